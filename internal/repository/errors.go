package repository

import "errors"

// 存储层的通用错误
var (
	// ErrStoreUnavailable 表示底层 KV 存储读写失败（连接、超时、数据损坏等）。
	// 适配器不做重试，交给调用方决定。
	ErrStoreUnavailable = errors.New("repository: room store unavailable")
)
