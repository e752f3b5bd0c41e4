package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/switchcollectorpro/switchcollectorpro/addone/collect"
	"github.com/switchcollectorpro/switchcollectorpro/addone/interact"
	"github.com/switchcollectorpro/switchcollectorpro/internal/config"
	"github.com/switchcollectorpro/switchcollectorpro/pkg/logger"
	"github.com/switchcollectorpro/switchcollectorpro/pkg/telnet"
)

// Credentials 交换机连接参数
type Credentials struct {
	Host     string        `json:"host"`
	Port     int           `json:"port"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	Timeout  time.Duration `json:"timeout"`
}

// CredentialsFromConfig 从配置构造连接参数
func CredentialsFromConfig(cfg config.SwitchConfig) Credentials {
	return Credentials{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout,
	}
}

// PollResult 一轮成功采集的结果
type PollResult struct {
	ID        string
	Snapshot  *collect.Snapshot
	Commands  []*telnet.CommandResult
	StartTime time.Time
	EndTime   time.Time
}

// FailedCommands 超时或被设备拒绝的命令
func (r *PollResult) FailedCommands() []string {
	var out []string
	for _, c := range r.Commands {
		if c.Error != "" {
			out = append(out, c.Command)
		}
	}
	return out
}

// Aggregator 每轮采集新建会话、按固定顺序执行命令目录并合并为快照
type Aggregator struct {
	platform string
	maxPages int
	unlock   config.UnlockConfig
	// dial 传输建连函数，为空时使用 Telnet
	dial telnet.Dialer
}

// NewAggregator 创建聚合器
func NewAggregator(cfg config.SwitchConfig) *Aggregator {
	platform := strings.TrimSpace(strings.ToLower(cfg.Platform))
	if platform == "" {
		platform = "default"
	}
	return &Aggregator{
		platform: platform,
		maxPages: cfg.MaxPages,
		unlock:   cfg.Unlock,
	}
}

// WithDialer 替换传输建连函数
func (a *Aggregator) WithDialer(d telnet.Dialer) *Aggregator {
	a.dial = d
	return a
}

// Platform 平台名称
func (a *Aggregator) Platform() string { return a.platform }

// sessionOptions 由平台交互默认值与配置覆盖生成会话选项
func (a *Aggregator) sessionOptions(creds Credentials) telnet.Options {
	d := interact.Get(a.platform).Defaults()

	timeout := creds.Timeout
	if timeout <= 0 && d.Timeout > 0 {
		timeout = time.Duration(d.Timeout) * time.Second
	}
	maxPages := d.MaxPages
	if a.maxPages > 0 {
		maxPages = a.maxPages
	}

	opts := telnet.Options{
		Dial:                  a.dial,
		ReadTimeout:           timeout,
		PromptSuffixes:        d.PromptSuffixes,
		CommandPromptSuffixes: d.CommandPromptSuffixes,
		LoginHints:            d.LoginHints,
		PasswordHints:         d.PasswordHints,
		FailureHints:          d.FailureHints,
		MoreMarker:            d.MoreMarker,
		MaxPages:              maxPages,
		ExitCommands:          d.ExitCommands,
	}

	if a.unlock.Enabled {
		cmd := d.UnlockCommand
		if strings.TrimSpace(a.unlock.Command) != "" {
			cmd = a.unlock.Command
		}
		secret := d.UnlockSecret
		if a.unlock.Secret != "" {
			secret = a.unlock.Secret
		}
		if cmd != "" {
			opts.Unlock = &telnet.UnlockOptions{
				Command:       cmd,
				Secret:        secret,
				ConfirmAnswer: d.ConfirmAnswer,
			}
		}
	}
	return opts
}

// Open 建立并登录一个新会话；建连失败按平台重试次数重试，认证失败不重试
func (a *Aggregator) Open(ctx context.Context, creds Credentials) (*telnet.Session, error) {
	retries := interact.Get(a.platform).Defaults().Retries
	info := telnet.ConnectionInfo{Host: creds.Host, Port: creds.Port, Username: creds.Username, Password: creds.Password}
	opts := a.sessionOptions(creds)

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &PollError{Kind: KindCancelled, Err: err}
		}
		sess := telnet.NewSession(info, opts)
		err := sess.Open(ctx)
		if err == nil {
			return sess, nil
		}
		lastErr = err
		if errors.Is(err, telnet.ErrAuthenticationFailed) {
			break
		}
		logger.WithFields(logrus.Fields{"host": info.Address(), "attempt": attempt + 1}).WithError(err).Warn("Connect attempt failed")
	}
	return nil, classifyOpenError(lastErr)
}

// PollOnce 执行一轮采集
// 无法进入 Ready 时立即返回 *PollError 且不做任何合并；会话在所有路径上都会关闭
func (a *Aggregator) PollOnce(ctx context.Context, pollID string, creds Credentials) (*PollResult, error) {
	log := logger.WithPoll(creds.Host, pollID).WithField("platform", a.platform)
	start := time.Now()

	sess, err := a.Open(ctx, creds)
	if err != nil {
		log.WithError(err).Error("Poll aborted before session ready")
		return nil, err
	}
	defer sess.Close()

	if sess.UnlockConfigured() {
		// 解锁失败为非致命：继续以基础模式采集
		if uerr := sess.Unlock(ctx); uerr != nil {
			log.WithError(uerr).Warn("Continuing without extended command set")
		}
	}

	ip := interact.Get(a.platform)
	cp := collect.Get(a.platform)
	errorHints := ip.Defaults().ErrorHints
	commands := ip.TransformCommands(interact.CommandTransformInput{
		Commands: cp.SystemCommands(),
		Metadata: map[string]interface{}{"poll_id": pollID, "privileged": sess.Privileged()},
	}).Commands

	snap := &collect.Snapshot{Privileged: sess.Privileged()}
	results := make([]*telnet.CommandResult, 0, len(commands))
	for _, command := range commands {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("Poll cancelled between commands")
			return nil, &PollError{Kind: KindCancelled, Err: err}
		}

		res, cerr := sess.SendCommand(ctx, command)
		if res == nil {
			// 会话不可用（连接已断开）：其余命令无法执行
			log.WithField("command", command).WithError(cerr).Warn("Command not sent")
			results = append(results, &telnet.CommandResult{Command: command, Error: errString(cerr)})
			continue
		}
		results = append(results, res)
		if cerr != nil && !errors.Is(cerr, telnet.ErrCommandTimeout) {
			log.WithField("command", command).WithError(cerr).Warn("Command failed")
			continue
		}

		if hint := matchErrorHint(res.Output, errorHints); hint != "" {
			res.Error = "rejected by device: " + hint
			log.WithFields(logrus.Fields{"command": command, "hint": hint}).Warn("Command rejected by device")
			continue
		}

		// 超时的命令同样解析已读取的部分输出
		out, perr := cp.Parse(collect.ParseContext{Platform: a.platform, Command: command, PollID: pollID}, res.Output)
		if perr != nil {
			log.WithField("command", command).WithError(perr).Warn("Parse failed")
			continue
		}
		if out.Record != nil {
			out.Record.MergeInto(snap)
		}
	}

	snap.PolledAt = time.Now()
	result := &PollResult{
		ID:        pollID,
		Snapshot:  snap,
		Commands:  results,
		StartTime: start,
		EndTime:   snap.PolledAt,
	}
	log.WithFields(logrus.Fields{
		"commands": len(results),
		"failed":   len(result.FailedCommands()),
		"duration": time.Since(start).String(),
	}).Info("Poll completed")
	return result, nil
}

// TestConnection 建连、登录后立即关闭
func (a *Aggregator) TestConnection(ctx context.Context, creds Credentials) error {
	sess, err := a.Open(ctx, creds)
	if err != nil {
		return err
	}
	sess.Close()
	return nil
}

func matchErrorHint(output string, hints []string) string {
	lower := strings.ToLower(output)
	for _, h := range hints {
		if h != "" && strings.Contains(lower, strings.ToLower(h)) {
			return h
		}
	}
	return ""
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
