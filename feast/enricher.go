// Package feast 从 Feast Feature Store 补全稀疏的游客画像。
// 补全是 best-effort：特征服务不可用或查无此人时，画像原样返回，
// 请求照常进入打分流程。
package feast

import (
	"context"
	"fmt"

	feastsdk "github.com/feast-dev/feast/sdk/go"

	"github.com/rushteam/tourkit/core"
)

// 在线特征名。特征视图 visitor_profile 由离线管道物化，
// 这里只做在线读取。
const (
	featureInterests      = "visitor_profile:interests"
	featureAgeBand        = "visitor_profile:age_band"
	featureInteractivity  = "visitor_profile:interactivity"
	featureMobility       = "visitor_profile:mobility"
	featureCrowdTolerance = "visitor_profile:crowd_tolerance"
	featureNoiseTolerance = "visitor_profile:noise_tolerance"
)

// Enricher 基于官方 Feast Go SDK 的画像补全器。
//
// 只补空字段：请求里显式给出的偏好永远优先于存储的历史偏好。
type Enricher struct {
	client  *feastsdk.GrpcClient
	project string
}

// NewEnricher 连接 Feast Feature Server（gRPC，默认端口 6565）。
func NewEnricher(host string, port int, project string) (*Enricher, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("feast: connect %s:%d: %w", host, port, err)
	}
	return &Enricher{client: client, project: project}, nil
}

// Enrich 按 visitorID 拉取在线特征并补全 profile 的空字段。
// 返回 error 仅供调用方记录，不应阻断请求。
func (e *Enricher) Enrich(ctx context.Context, visitorID string, profile *core.VisitorProfile) error {
	if e == nil || e.client == nil || visitorID == "" || profile == nil {
		return nil
	}

	req := &feastsdk.OnlineFeaturesRequest{
		Features: []string{
			featureInterests,
			featureAgeBand,
			featureInteractivity,
			featureMobility,
			featureCrowdTolerance,
			featureNoiseTolerance,
		},
		Entities: []feastsdk.Row{
			{"visitor_id": feastsdk.StrVal(visitorID)},
		},
		Project: e.project,
	}

	resp, err := e.client.GetOnlineFeatures(ctx, req)
	if err != nil {
		return fmt.Errorf("feast: get online features: %w", err)
	}
	rows := resp.Rows()
	if len(rows) == 0 {
		return nil
	}
	row := rows[0]

	if len(profile.Interests) == 0 {
		if v, ok := row[featureInterests]; ok {
			if list := v.GetStringListVal(); list != nil {
				profile.Interests = append(profile.Interests, list.GetVal()...)
			}
		}
	}
	fillString(&profile.AgeBand, row, featureAgeBand)
	fillString(&profile.Interactivity, row, featureInteractivity)
	fillString(&profile.Mobility, row, featureMobility)
	fillString(&profile.CrowdTolerance, row, featureCrowdTolerance)
	fillString(&profile.NoiseTolerance, row, featureNoiseTolerance)
	return nil
}

func fillString(dst *string, row feastsdk.Row, feature string) {
	if *dst != "" {
		return
	}
	if v, ok := row[feature]; ok {
		if s := v.GetStringVal(); s != "" {
			*dst = s
		}
	}
}

// Close 释放客户端。SDK 的 gRPC 连接由底层库管理，这里只解除引用。
func (e *Enricher) Close() error {
	e.client = nil
	return nil
}
