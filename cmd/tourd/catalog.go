package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rushteam/tourkit/core"
)

// loadCatalog 从 JSON 文件加载展品目录。
// 路径为空时返回空目录：服务可以先起来，目录热更新另行接入。
func loadCatalog(path string) ([]*core.Exhibit, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var exhibits []*core.Exhibit
	if err := json.Unmarshal(data, &exhibits); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return exhibits, nil
}
