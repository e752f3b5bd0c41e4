package telnet

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/switchcollectorpro/switchcollectorpro/pkg/logger"
)

// State 会话状态
type State int

const (
	StateDisconnected State = iota
	StateAuthenticating
	StatePrivilegeUnlockPending
	StateReady
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateAuthenticating:
		return "authenticating"
	case StatePrivilegeUnlockPending:
		return "privilege_unlock_pending"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// 默认交互参数
const (
	DefaultMaxPages    = 20
	DefaultMoreMarker  = "---- More ----"
	DefaultReadTimeout = 10 * time.Second
	// DefaultAbortKey 在分页提示处中止剩余输出（Ctrl+C）
	DefaultAbortKey = "\x03"
	// 等待提示类响应时单步允许读取的片段数上限
	maxPromptChunks = 16
	// 单条命令回显中非提示符 '>' 分段的上限，与翻页次数分开计数
	maxOutputChunks = 1024
	// 单条命令回显字节上限
	maxReplyBytes = 4 << 20
)

// repeatedLoginPrompt 登录后再次出现的完整登录/密码提示行
var repeatedLoginPrompt = regexp.MustCompile(`(?i)^(login|username|user name|password)\s*:$`)

// UnlockOptions 扩展命令集解锁参数（命令与口令均视为敏感信息，不落日志）
type UnlockOptions struct {
	Command       string
	Secret        string
	ConfirmHints  []string
	ConfirmAnswer string
	PasswordHints []string
	FailureHints  []string
}

// Options 会话交互选项
type Options struct {
	// Dial 传输建连函数，默认使用 Telnet Dial
	Dial Dialer
	// ReadTimeout 单次读取超时
	ReadTimeout time.Duration
	// PromptSuffixes 登录后提示符后缀（如 '>'、'#'）
	PromptSuffixes []string
	// CommandPromptSuffixes 命令结束提示符后缀，为空时沿用 PromptSuffixes
	CommandPromptSuffixes []string
	LoginHints            []string
	PasswordHints         []string
	FailureHints          []string
	// MoreMarker 分页提示文本
	MoreMarker string
	// MaxPages 单条命令最多接收的分页数，保证循环终止
	MaxPages int
	// AbortKey 翻页达到上限时发送的中止按键
	AbortKey string
	// ExitCommands 关闭前尝试发送的退出命令
	ExitCommands []string
	Unlock       *UnlockOptions
}

func (o *Options) applyDefaults() {
	if o.Dial == nil {
		o.Dial = Dial
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	if len(o.PromptSuffixes) == 0 {
		o.PromptSuffixes = []string{">", "#"}
	}
	if len(o.CommandPromptSuffixes) == 0 {
		o.CommandPromptSuffixes = o.PromptSuffixes
	}
	if len(o.LoginHints) == 0 {
		o.LoginHints = []string{"login", "username", "user"}
	}
	if len(o.PasswordHints) == 0 {
		o.PasswordHints = []string{"password"}
	}
	if len(o.FailureHints) == 0 {
		o.FailureHints = []string{"invalid", "failed", "denied"}
	}
	if o.MoreMarker == "" {
		o.MoreMarker = DefaultMoreMarker
	}
	if o.MaxPages <= 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.AbortKey == "" {
		o.AbortKey = DefaultAbortKey
	}
	if o.Unlock != nil {
		if len(o.Unlock.ConfirmHints) == 0 {
			o.Unlock.ConfirmHints = []string{"[y/n]", "continue?"}
		}
		if o.Unlock.ConfirmAnswer == "" {
			o.Unlock.ConfirmAnswer = "Y"
		}
		if len(o.Unlock.PasswordHints) == 0 {
			o.Unlock.PasswordHints = o.PasswordHints
		}
		if len(o.Unlock.FailureHints) == 0 {
			o.Unlock.FailureHints = append(append([]string{}, o.FailureHints...), "unrecognized", "incomplete", "error")
		}
	}
}

// CommandResult 命令执行结果（RawReply）
type CommandResult struct {
	Command  string        `json:"command"`
	Output   string        `json:"output"`
	Error    string        `json:"error"`
	Pages    int           `json:"pages"`
	Duration time.Duration `json:"duration"`
}

// Session 单轮采集的交互式会话，独占一个传输连接
// 同一时刻只允许一条命令在途
type Session struct {
	info       ConnectionInfo
	opts       Options
	transport  Transport
	state      State
	privileged bool
	prompt     string
	mutex      sync.Mutex
	log        *logrus.Entry
}

// NewSession 创建会话（状态为 Disconnected，未建连）
func NewSession(info ConnectionInfo, opts Options) *Session {
	opts.applyDefaults()
	return &Session{
		info:  info,
		opts:  opts,
		state: StateDisconnected,
		log:   logger.WithField("host", info.Address()),
	}
}

// State 当前状态
func (s *Session) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// Privileged 是否已解锁扩展命令集
func (s *Session) Privileged() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.privileged
}

// Prompt 登录后捕获的提示符
func (s *Session) Prompt() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.prompt
}

func (s *Session) setState(st State) {
	s.log.WithField("state", st.String()).Debug("Session state changed")
	s.state = st
}

// Open 建连并登录：Disconnected -> Authenticating -> Ready(basic)
// 失败时连接已被关闭
func (s *Session) Open(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state != StateDisconnected {
		return fmt.Errorf("session already opened (state=%s)", s.state)
	}

	t, err := s.opts.Dial(ctx, s.info.Host, s.info.Port, s.opts.ReadTimeout)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	s.transport = t
	s.setState(StateAuthenticating)

	if err := s.login(); err != nil {
		s.closeLocked()
		return err
	}

	s.setState(StateReady)
	s.log.WithField("prompt", s.prompt).Info("Logged in to switch")
	return nil
}

func (s *Session) login() error {
	// 1) 等待登录提示（Login:/Username:），此前超时视为连接失败
	if _, err := s.readUntilHint(s.opts.LoginHints, []string{":"}); err != nil {
		return fmt.Errorf("%w: waiting for login prompt: %v", ErrConnectionFailed, err)
	}
	if err := s.transport.Write([]byte(s.info.Username + "\n")); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	// 2) 等待密码提示
	if _, err := s.readUntilHint(s.opts.PasswordHints, []string{":"}); err != nil {
		return fmt.Errorf("%w: waiting for password prompt: %v", ErrAuthenticationFailed, err)
	}
	if err := s.transport.Write([]byte(s.info.Password + "\n")); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	// 3) 等待提示符；失败后设备通常重新给出登录提示，因此 ':' 也作为分隔符
	delims := append(append([]string{}, s.opts.PromptSuffixes...), ":")
	for i := 0; i < maxOutputChunks; i++ {
		chunk, err := s.transport.ReadUntil(delims, s.opts.ReadTimeout)
		if err != nil {
			return fmt.Errorf("%w: waiting for prompt: %v", ErrAuthenticationFailed, err)
		}
		if containsAny(chunk, s.opts.FailureHints) {
			return fmt.Errorf("%w: %s", ErrAuthenticationFailed, strings.TrimSpace(sanitize(chunk)))
		}
		last := lastLine(sanitize(chunk))
		if hasAnySuffix(last, s.opts.PromptSuffixes) {
			s.prompt = last
			return nil
		}
		// 再次出现完整的登录/密码提示行即视为认证被拒绝；横幅与日志中的 "login"/"user" 不算
		if repeatedLoginPrompt.MatchString(last) {
			return fmt.Errorf("%w: login prompt repeated", ErrAuthenticationFailed)
		}
	}
	return fmt.Errorf("%w: prompt not recognized", ErrAuthenticationFailed)
}

// UnlockConfigured 平台是否提供解锁命令
func (s *Session) UnlockConfigured() bool {
	return s.opts.Unlock != nil && s.opts.Unlock.Command != ""
}

// Unlock 解锁扩展命令集；失败为非致命错误，会话保持 Ready(basic)
func (s *Session) Unlock(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state != StateReady {
		return ErrNotReady
	}
	u := s.opts.Unlock
	if u == nil || u.Command == "" {
		return fmt.Errorf("%w: no unlock command configured", ErrPrivilegeUnlockFailed)
	}

	s.setState(StatePrivilegeUnlockPending)
	err := s.unlock(u)
	s.setState(StateReady)
	if err != nil {
		s.log.WithError(err).Warn("Privilege unlock failed, continuing in basic mode")
		return err
	}
	s.privileged = true
	s.log.Info("Extended command set unlocked")
	return nil
}

func (s *Session) unlock(u *UnlockOptions) error {
	if err := s.transport.Write([]byte(u.Command + "\n")); err != nil {
		return fmt.Errorf("%w: %v", ErrPrivilegeUnlockFailed, err)
	}

	delims := append(append([]string{}, s.opts.CommandPromptSuffixes...), "]", ":")
	confirmed, secretSent := false, false
	for i := 0; i < maxPromptChunks; i++ {
		chunk, err := s.transport.ReadUntil(delims, s.opts.ReadTimeout)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPrivilegeUnlockFailed, err)
		}
		lower := strings.ToLower(chunk)
		switch {
		case containsAny(lower, u.FailureHints):
			// 读完剩余内容直到提示符，保持后续命令的提示符对齐
			if !s.isPromptLine(lastLine(sanitize(chunk))) {
				s.drainToPrompt()
			}
			return fmt.Errorf("%w: %s", ErrPrivilegeUnlockFailed, strings.TrimSpace(sanitize(chunk)))
		case !confirmed && containsAny(lower, u.ConfirmHints):
			confirmed = true
			if err := s.transport.Write([]byte(u.ConfirmAnswer + "\n")); err != nil {
				return fmt.Errorf("%w: %v", ErrPrivilegeUnlockFailed, err)
			}
		case !secretSent && containsAny(lower, u.PasswordHints):
			secretSent = true
			if err := s.transport.Write([]byte(u.Secret + "\n")); err != nil {
				return fmt.Errorf("%w: %v", ErrPrivilegeUnlockFailed, err)
			}
		case s.isPromptLine(lastLine(sanitize(chunk))):
			return nil
		}
	}
	return fmt.Errorf("%w: no prompt after unlock", ErrPrivilegeUnlockFailed)
}

// SendCommand 发送命令并收集完整输出（自动翻页）
// 超时返回部分输出与 ErrCommandTimeout；调用方按部分回显处理
func (s *Session) SendCommand(ctx context.Context, command string) (*CommandResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state != StateReady {
		return nil, ErrNotReady
	}

	start := time.Now()
	result := &CommandResult{Command: command}

	if err := s.transport.Write([]byte(command + "\n")); err != nil {
		result.Error = err.Error()
		result.Duration = time.Since(start)
		return result, err
	}

	delims := append(append([]string{}, s.opts.CommandPromptSuffixes...), s.opts.MoreMarker)
	var acc strings.Builder
	var readErr error
	// 只有分页提示计入翻页次数；输出内容中的 '>' 由 maxOutputChunks 与 maxReplyBytes 限制
	chunks := 0
	result.Pages = 1
	for {
		chunk, err := s.transport.ReadUntil(delims, s.opts.ReadTimeout)
		if err != nil {
			if IsTimeout(err) {
				readErr = fmt.Errorf("%w: %s", ErrCommandTimeout, command)
			} else {
				readErr = err
			}
			break
		}
		acc.WriteString(chunk)
		if strings.Contains(chunk, s.opts.MoreMarker) {
			if result.Pages >= s.opts.MaxPages {
				readErr = fmt.Errorf("%w: %s: page limit %d reached", ErrCommandTimeout, command, s.opts.MaxPages)
				_ = s.transport.Write([]byte(s.opts.AbortKey))
				s.drainToPrompt()
				break
			}
			// 请求下一页
			if err := s.transport.Write([]byte(" ")); err != nil {
				readErr = err
				break
			}
			result.Pages++
			continue
		}
		if s.isPromptLine(lastLine(sanitize(chunk))) {
			break
		}
		// 输出中出现了非提示符的 '>'，继续读取
		chunks++
		if chunks >= maxOutputChunks || acc.Len() >= maxReplyBytes {
			readErr = fmt.Errorf("%w: %s: reply too long", ErrCommandTimeout, command)
			s.drainToPrompt()
			break
		}
	}

	result.Output = cleanReply(acc.String(), command, s.opts.MoreMarker, s.prompt)
	result.Duration = time.Since(start)
	if readErr != nil {
		result.Error = readErr.Error()
		s.log.WithFields(logrus.Fields{"command": command, "pages": result.Pages}).WithError(readErr).Warn("Command read incomplete")
		return result, readErr
	}
	logger.DebugCommandOutput(command, result.Output, 3)
	return result, nil
}

// Close 尽力关闭连接，错误被吞掉
func (s *Session) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closeLocked()
}

func (s *Session) closeLocked() {
	defer func() {
		// 关闭阶段任何异常都不向调用方抛出
		_ = recover()
	}()
	if s.transport != nil {
		if s.state == StateReady {
			for _, ec := range s.opts.ExitCommands {
				_ = s.transport.Write([]byte(ec + "\n"))
			}
		}
		_ = s.transport.Close()
		s.transport = nil
	}
	if s.state != StateDisconnected {
		s.setState(StateDisconnected)
	}
	s.privileged = false
}

// readUntilHint 读取直到累计文本包含任一提示关键字（大小写不敏感）
func (s *Session) readUntilHint(hints []string, delims []string) (string, error) {
	var acc strings.Builder
	for i := 0; i < maxPromptChunks; i++ {
		chunk, err := s.transport.ReadUntil(delims, s.opts.ReadTimeout)
		if err != nil {
			return acc.String(), err
		}
		acc.WriteString(chunk)
		if containsAny(chunk, hints) {
			return acc.String(), nil
		}
	}
	return acc.String(), fmt.Errorf("prompt %q not seen", hints)
}

// drainToPrompt 丢弃剩余输出直到提示符，遇到分页提示则中止，使下一条命令从干净的提示符开始
func (s *Session) drainToPrompt() {
	delims := append(append([]string{}, s.opts.CommandPromptSuffixes...), s.opts.MoreMarker)
	for i := 0; i < maxOutputChunks; i++ {
		chunk, err := s.transport.ReadUntil(delims, s.opts.ReadTimeout)
		if err != nil || s.isPromptLine(lastLine(sanitize(chunk))) {
			return
		}
		if s.opts.MoreMarker != "" && strings.Contains(chunk, s.opts.MoreMarker) {
			if err := s.transport.Write([]byte(s.opts.AbortKey)); err != nil {
				return
			}
		}
	}
}

// isPromptLine 判断行是否是提示符；若已捕获登录提示符，则要求与其一致
func (s *Session) isPromptLine(line string) bool {
	if !hasAnySuffix(line, s.opts.CommandPromptSuffixes) {
		return false
	}
	if s.prompt == "" {
		return true
	}
	// 允许模式变化后的提示符（如 <sysname> 与 [sysname]），以去掉括号后的主机名比对
	return strings.Contains(line, strings.Trim(s.prompt, "<>[]#"))
}
