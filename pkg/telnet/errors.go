package telnet

import (
	"errors"
	"fmt"
)

// 会话级错误分类
var (
	// ErrConnectionFailed 建连失败（拨号失败或登录提示前超时），本轮采集中止
	ErrConnectionFailed = errors.New("connection failed")
	// ErrAuthenticationFailed 认证失败（出现失败标记或提示符不匹配），本轮采集中止
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrPrivilegeUnlockFailed 扩展命令集解锁失败，非致命
	ErrPrivilegeUnlockFailed = errors.New("privilege unlock failed")
	// ErrCommandTimeout 单条命令读取超时，返回已读取的部分输出
	ErrCommandTimeout = errors.New("command timeout")
	// ErrNotReady 会话尚未进入 Ready 状态
	ErrNotReady = errors.New("session not ready")
)

// ConnectError 传输层建连错误
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to dial %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// TimeoutError 读取超时：在超时窗口内未见到任何分隔符，已读数据被丢弃
type TimeoutError struct {
	Delims []string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("read timeout waiting for %q", e.Delims)
}

// Timeout 兼容 net.Error 风格的判断
func (e *TimeoutError) Timeout() bool { return true }

// IOError 读写过程中的连接错误
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsTimeout 判断错误是否为读取超时
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
