package service

import (
	"errors"
	"fmt"

	"github.com/switchcollectorpro/switchcollectorpro/pkg/telnet"
)

// ErrCredentialsRequired 连接测试指定了其他地址却未提供凭据
var ErrCredentialsRequired = errors.New("username and password are required when host or port is overridden")

// ErrNoCachedSnapshot 发布端不可读或未保存快照
var ErrNoCachedSnapshot = errors.New("no cached snapshot")

// PollErrorKind 采集失败类别
type PollErrorKind string

const (
	KindConnectionFailed     PollErrorKind = "connection_failed"
	KindAuthenticationFailed PollErrorKind = "authentication_failed"
	KindCancelled            PollErrorKind = "cancelled"
)

// PollError 整轮采集失败（未产生快照，能耗账本保持不变）
type PollError struct {
	Kind PollErrorKind
	Err  error
}

func (e *PollError) Error() string {
	return fmt.Sprintf("poll failed (%s): %v", e.Kind, e.Err)
}

func (e *PollError) Unwrap() error { return e.Err }

// Terminal 连接或认证失败需要运维介入，不能仅显示为数据过期
func (e *PollError) Terminal() bool {
	return e.Kind == KindConnectionFailed || e.Kind == KindAuthenticationFailed
}

// classifyOpenError 将会话建连错误归类；认证失败优先
func classifyOpenError(err error) *PollError {
	if errors.Is(err, telnet.ErrAuthenticationFailed) {
		return &PollError{Kind: KindAuthenticationFailed, Err: err}
	}
	return &PollError{Kind: KindConnectionFailed, Err: err}
}

// AsPollError 提取 PollError
func AsPollError(err error) (*PollError, bool) {
	var pe *PollError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
