package telnet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrompt = "<HP V1910>"

// scriptedTransport 按写入内容追加设备回显的假传输
type scriptedTransport struct {
	mu      sync.Mutex
	pending string
	writes  []string
	closed  bool
	respond func(w string) string
}

func (f *scriptedTransport) ReadUntil(delims []string, timeout time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	best, bestEnd := -1, 0
	for _, d := range delims {
		if i := strings.Index(f.pending, d); i >= 0 && (best < 0 || i < best) {
			best, bestEnd = i, i+len(d)
		}
	}
	if best < 0 {
		f.pending = ""
		return "", &TimeoutError{Delims: delims}
	}
	out := f.pending[:bestEnd]
	f.pending = f.pending[bestEnd:]
	return out, nil
}

func (f *scriptedTransport) Write(b []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return &IOError{Op: "write", Err: errors.New("closed")}
	}
	w := string(b)
	f.writes = append(f.writes, w)
	if f.respond != nil {
		f.pending += f.respond(w)
	}
	return nil
}

func (f *scriptedTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *scriptedTransport) wrote(s string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.writes {
		if w == s {
			return true
		}
	}
	return false
}

func (f *scriptedTransport) count(s string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, w := range f.writes {
		if w == s {
			n++
		}
	}
	return n
}

// newSwitchTransport 模拟 V1910 登录流程，commands 为登录后的命令应答
func newSwitchTransport(password string, commands func(w string) string) *scriptedTransport {
	f := &scriptedTransport{pending: "\r\nLogin authentication\r\n\r\nUsername:"}
	step := 0
	f.respond = func(w string) string {
		switch step {
		case 0:
			step++
			return strings.TrimSuffix(w, "\n") + "\r\nPassword:"
		case 1:
			step++
			if strings.TrimSuffix(w, "\n") != password {
				return "\r\n% Invalid password\r\n\r\nUsername:"
			}
			return "\r\n******************************************\r\n* Copyright (c) Hewlett-Packard Company *\r\n******************************************\r\n" + testPrompt
		default:
			if commands == nil {
				return ""
			}
			return commands(w)
		}
	}
	return f
}

func dialerFor(t Transport) Dialer {
	return func(ctx context.Context, host string, port int, timeout time.Duration) (Transport, error) {
		return t, nil
	}
}

func newTestSession(t Transport, mutate func(o *Options)) *Session {
	opts := Options{
		Dial:                  dialerFor(t),
		ReadTimeout:           50 * time.Millisecond,
		CommandPromptSuffixes: []string{">"},
		ExitCommands:          []string{"quit"},
	}
	if mutate != nil {
		mutate(&opts)
	}
	return NewSession(ConnectionInfo{Host: "192.0.2.10", Port: 23, Username: "admin", Password: "secret"}, opts)
}

func TestOpenSuccess(t *testing.T) {
	ft := newSwitchTransport("secret", nil)
	s := newTestSession(ft, nil)

	require.NoError(t, s.Open(context.Background()))
	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, testPrompt, s.Prompt())
	assert.False(t, s.Privileged(), "登录后未解锁")
	assert.True(t, ft.wrote("admin\n"))
	assert.True(t, ft.wrote("secret\n"))

	s.Close()
	assert.True(t, ft.closed)
	assert.True(t, ft.wrote("quit\n"), "关闭前应发送退出命令")
	assert.Equal(t, StateDisconnected, s.State())
}

func TestOpenInvalidPassword(t *testing.T) {
	ft := newSwitchTransport("other", nil)
	s := newTestSession(ft, nil)

	err := s.Open(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthenticationFailed), "应为认证失败: %v", err)
	assert.True(t, ft.closed, "认证失败后传输应被关闭")
	assert.False(t, ft.wrote("quit\n"), "未登录成功不应发送退出命令")
	assert.Equal(t, StateDisconnected, s.State())
}

func TestOpenBannerMentioningLoginIsNotRejection(t *testing.T) {
	banners := map[string]string{
		"notice":  "\r\nNotice to users:\r\nAuthorized access only.\r\n",
		"syslog":  "\r\n%Jan  1 00:12:03:105 2024 HP SHELL/5/SHELL_LOGIN: admin logged in from 192.0.2.1.\r\n",
		"user-id": "\r\nUser interface aux0 is available.\r\n",
	}
	for name, banner := range banners {
		t.Run(name, func(t *testing.T) {
			ft := &scriptedTransport{pending: "\r\nLogin authentication\r\n\r\nUsername:"}
			step := 0
			ft.respond = func(w string) string {
				step++
				switch step {
				case 1:
					return "admin\r\nPassword:"
				case 2:
					return banner + testPrompt
				}
				return ""
			}
			s := newTestSession(ft, nil)

			require.NoError(t, s.Open(context.Background()))
			assert.Equal(t, StateReady, s.State())
			assert.Equal(t, testPrompt, s.Prompt())
		})
	}
}

func TestOpenLoginPromptRepeated(t *testing.T) {
	ft := &scriptedTransport{pending: "Username:"}
	step := 0
	ft.respond = func(w string) string {
		step++
		if step == 1 {
			return "admin\r\nPassword:"
		}
		return "\r\n\r\nUsername:"
	}
	s := newTestSession(ft, nil)

	err := s.Open(context.Background())
	assert.True(t, errors.Is(err, ErrAuthenticationFailed), "应为认证失败: %v", err)
}

func TestOpenDialFailure(t *testing.T) {
	s := NewSession(ConnectionInfo{Host: "192.0.2.10", Port: 23}, Options{
		Dial: func(ctx context.Context, host string, port int, timeout time.Duration) (Transport, error) {
			return nil, &ConnectError{Addr: "192.0.2.10:23", Err: errors.New("connection refused")}
		},
	})

	err := s.Open(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectionFailed))
	assert.Equal(t, StateDisconnected, s.State())
}

func TestOpenNoLoginPrompt(t *testing.T) {
	ft := &scriptedTransport{pending: "garbage without delimiter"}
	s := newTestSession(ft, nil)

	err := s.Open(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConnectionFailed), "登录提示前超时视为连接失败")
	assert.True(t, ft.closed)
}

func TestOpenTwice(t *testing.T) {
	ft := newSwitchTransport("secret", nil)
	s := newTestSession(ft, nil)
	require.NoError(t, s.Open(context.Background()))
	assert.Error(t, s.Open(context.Background()))
}

func TestSendCommandBeforeOpen(t *testing.T) {
	s := newTestSession(&scriptedTransport{}, nil)
	_, err := s.SendCommand(context.Background(), "display version")
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestSendCommandSinglePage(t *testing.T) {
	ft := newSwitchTransport("secret", func(w string) string {
		if w == "display clock\n" {
			return "display clock\r\n10:21:03 UTC Mon 01/01/2024\r\n" + testPrompt
		}
		return ""
	})
	s := newTestSession(ft, nil)
	require.NoError(t, s.Open(context.Background()))

	res, err := s.SendCommand(context.Background(), "display clock")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, "10:21:03 UTC Mon 01/01/2024", strings.TrimSpace(res.Output))
	assert.NotContains(t, res.Output, testPrompt, "末尾提示符应被去除")
}

func TestSendCommandPagination(t *testing.T) {
	ft := newSwitchTransport("secret", func(w string) string {
		switch w {
		case "display interface brief\n":
			return "display interface brief\r\nGE1/0/1 UP 1G(a) F(a) A 1\r\n  ---- More ----"
		case " ":
			return "\x1b[16D                \x1b[16DGE1/0/2 DOWN auto A A 1\r\n" + testPrompt
		}
		return ""
	})
	s := newTestSession(ft, nil)
	require.NoError(t, s.Open(context.Background()))

	res, err := s.SendCommand(context.Background(), "display interface brief")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 1, ft.count(" "), "每遇到一次分页提示发送一个空格")
	assert.NotContains(t, res.Output, "---- More ----")
	assert.NotContains(t, res.Output, "\x1b")
	assert.Contains(t, res.Output, "GE1/0/1 UP")
	assert.Contains(t, res.Output, "GE1/0/2 DOWN")
}

func TestSendCommandPageBound(t *testing.T) {
	ft := newSwitchTransport("secret", func(w string) string {
		switch w {
		case DefaultAbortKey:
			return "\r\n" + testPrompt
		case "display clock\n":
			return "display clock\r\n10:21:03 UTC Mon 01/01/2024\r\n" + testPrompt
		}
		return "line\r\n  ---- More ----"
	})
	s := newTestSession(ft, func(o *Options) { o.MaxPages = 3 })
	require.NoError(t, s.Open(context.Background()))

	res, err := s.SendCommand(context.Background(), "display mac-address")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCommandTimeout))
	assert.Equal(t, 3, res.Pages, "翻页次数受 MaxPages 限制")
	assert.Equal(t, 2, ft.count(" "))
	assert.Equal(t, 1, ft.count(DefaultAbortKey), "达到上限后中止剩余输出")
	assert.NotContains(t, res.Output, "---- More ----")

	// 中止后提示符已对齐，下一条命令拿到自己的回显
	res, err = s.SendCommand(context.Background(), "display clock")
	require.NoError(t, err)
	assert.Equal(t, "10:21:03 UTC Mon 01/01/2024", strings.TrimSpace(res.Output))
}

func TestSendCommandAngleBracketInOutput(t *testing.T) {
	var table strings.Builder
	table.WriteString("display interface brief\r\n")
	for i := 1; i <= 24; i++ {
		fmt.Fprintf(&table, "GE1/0/%d UP 1G(a) F(a) A 1 uplink->core%d\r\n", i, i)
	}
	table.WriteString(testPrompt)

	ft := newSwitchTransport("secret", func(w string) string {
		switch w {
		case "display interface brief\n":
			return table.String()
		case "display version\n":
			return "display version\r\nHP Comware Platform Software\r\n" + testPrompt
		}
		return ""
	})
	s := newTestSession(ft, nil)
	require.NoError(t, s.Open(context.Background()))

	res, err := s.SendCommand(context.Background(), "display interface brief")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pages, "输出中的 '>' 不计入翻页")
	assert.Contains(t, res.Output, "GE1/0/1 UP")
	assert.Contains(t, res.Output, "GE1/0/24 UP 1G(a) F(a) A 1 uplink->core24")

	res, err = s.SendCommand(context.Background(), "display version")
	require.NoError(t, err)
	assert.Equal(t, "HP Comware Platform Software", strings.TrimSpace(res.Output))
}

func TestSendCommandTimeoutKeepsPartialOutput(t *testing.T) {
	ft := newSwitchTransport("secret", func(w string) string {
		if w == "display arp\n" {
			return "display arp\r\n10.0.0.1 0011-2233-4455 1 GE1/0/1 20 D\r\n  ---- More ----"
		}
		return ""
	})
	s := newTestSession(ft, nil)
	require.NoError(t, s.Open(context.Background()))

	res, err := s.SendCommand(context.Background(), "display arp")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCommandTimeout))
	require.NotNil(t, res)
	assert.Contains(t, res.Output, "10.0.0.1 0011-2233-4455")
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, StateReady, s.State(), "命令超时不影响会话状态")
}

func unlockResponder(secret string) func(w string) string {
	return func(w string) string {
		switch w {
		case "_cmdline-mode on\n":
			return "_cmdline-mode on\r\nAll commands can be displayed and executed. Continue? [Y/N]"
		case "Y\n":
			return "Y\r\nPlease input password:"
		case secret + "\n":
			return "******\r\nWarning: Now you enter an all-command mode for developer's testing, some commands may affect operation by wrong use, please carefully use it with our engineer's direction.\r\n" + testPrompt
		case "display clock\n":
			return "display clock\r\n10:21:03 UTC Mon 01/01/2024\r\n" + testPrompt
		default:
			return "\r\nError: Invalid password.\r\n" + testPrompt
		}
	}
}

func TestUnlockSuccess(t *testing.T) {
	ft := newSwitchTransport("secret", unlockResponder("512900"))
	s := newTestSession(ft, func(o *Options) {
		o.Unlock = &UnlockOptions{Command: "_cmdline-mode on", Secret: "512900"}
	})
	require.NoError(t, s.Open(context.Background()))

	require.NoError(t, s.Unlock(context.Background()))
	assert.True(t, s.Privileged())
	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, 1, ft.count("Y\n"), "确认只回答一次")
	assert.True(t, ft.wrote("512900\n"))
}

func TestUnlockWrongSecretIsNonFatal(t *testing.T) {
	ft := newSwitchTransport("secret", unlockResponder("512900"))
	s := newTestSession(ft, func(o *Options) {
		o.Unlock = &UnlockOptions{Command: "_cmdline-mode on", Secret: "000000"}
	})
	require.NoError(t, s.Open(context.Background()))

	err := s.Unlock(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPrivilegeUnlockFailed))
	assert.False(t, s.Privileged())
	assert.Equal(t, StateReady, s.State(), "解锁失败后会话保持可用")

	// 提示符对齐后仍可继续执行基础命令
	res, err := s.SendCommand(context.Background(), "display clock")
	require.NoError(t, err)
	assert.Contains(t, res.Output, "10:21:03")
}

func TestUnlockNotConfigured(t *testing.T) {
	ft := newSwitchTransport("secret", nil)
	s := newTestSession(ft, nil)
	require.NoError(t, s.Open(context.Background()))

	err := s.Unlock(context.Background())
	assert.ErrorIs(t, err, ErrPrivilegeUnlockFailed)
	assert.False(t, s.Privileged())
}

func TestCleanReply(t *testing.T) {
	raw := "display version\r\nline one\r\n  ---- More ----\x1b[16D                \x1b[16Dline two\r\n\r\n<HP>"
	out := cleanReply(raw, "display version", DefaultMoreMarker, "<HP>")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "line one", lines[0])
	assert.Equal(t, "line two", strings.TrimSpace(lines[1]))
}

func TestSanitizeStripsControlSequences(t *testing.T) {
	assert.Equal(t, "ab\ncd", sanitize("a\x1b[1mb\r\nc\x07d"))
}
