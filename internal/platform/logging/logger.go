package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New はアプリケーション用の zap ロガーを生成します。env が "development"
// の場合は開発向けの読みやすい出力、それ以外は JSON の本番向け出力です。
func New(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)

	if env == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}

	return logger, nil
}
