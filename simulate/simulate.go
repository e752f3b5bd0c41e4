package simulate

import (
	"bufio"
	"embed"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/switchcollectorpro/switchcollectorpro/pkg/logger"
)

//go:embed outputs/*.txt
var builtinOutputs embed.FS

// Config 模拟交换机配置（simulate/simulate.yaml）
type Config struct {
	Listen        string `mapstructure:"listen"`
	Sysname       string `mapstructure:"sysname"`
	Username      string `mapstructure:"username"`
	Password      string `mapstructure:"password"`
	UnlockCommand string `mapstructure:"unlock_command"`
	UnlockSecret  string `mapstructure:"unlock_secret"`
	// PageLines 每页行数，0 表示不分页
	PageLines   int `mapstructure:"page_lines"`
	MaxConn     int `mapstructure:"max_conn"`
	IdleSeconds int `mapstructure:"idle_seconds"`
	// OutputDir 命令回显覆盖目录：<dir>/<command 空格替换为下划线>.txt
	OutputDir string `mapstructure:"output_dir"`
	// PrivilegedCommands 需先解锁扩展命令集才能执行的命令
	PrivilegedCommands []string `mapstructure:"privileged_commands"`
	// MaxLoginAttempts 登录失败次数上限，超过后断开
	MaxLoginAttempts int `mapstructure:"max_login_attempts"`
}

// DefaultConfig 内置默认值：V1910 风格提示符与解锁流程
func DefaultConfig() *Config {
	return &Config{
		Listen:           "127.0.0.1:2323",
		Sysname:          "HP V1910",
		Username:         "admin",
		Password:         "admin",
		UnlockCommand:    "_cmdline-mode on",
		UnlockSecret:     "512900",
		PageLines:        24,
		MaxConn:          4,
		IdleSeconds:      300,
		MaxLoginAttempts: 3,
		PrivilegedCommands: []string{
			"display device manuinfo",
			"display mac-address",
			"display arp",
			"display lldp neighbor-information brief",
		},
	}
}

// LoadConfig 读取 simulate.yaml，未配置的键使用默认值
func LoadConfig(path string) (*Config, error) {
	def := DefaultConfig()
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	v.SetDefault("listen", def.Listen)
	v.SetDefault("sysname", def.Sysname)
	v.SetDefault("username", def.Username)
	v.SetDefault("password", def.Password)
	v.SetDefault("unlock_command", def.UnlockCommand)
	v.SetDefault("unlock_secret", def.UnlockSecret)
	v.SetDefault("page_lines", def.PageLines)
	v.SetDefault("max_conn", def.MaxConn)
	v.SetDefault("idle_seconds", def.IdleSeconds)
	v.SetDefault("max_login_attempts", def.MaxLoginAttempts)
	v.SetDefault("privileged_commands", def.PrivilegedCommands)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read simulate config: %w", err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal simulate config: %w", err)
	}
	return &cfg, nil
}

// Server 模拟交换机 Telnet 服务
type Server struct {
	cfg      *Config
	listener net.Listener
	active   int
	mu       sync.Mutex
	wg       sync.WaitGroup
	conns    map[net.Conn]struct{}
	log      *logrus.Entry
}

// Start 监听并在后台接受连接
func Start(cfg *Config) (*Server, error) {
	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Listen, err)
	}
	s := &Server{
		cfg:      cfg,
		listener: ln,
		conns:    make(map[net.Conn]struct{}),
		log:      logger.WithField("component", "simulate"),
	}
	s.wg.Add(1)
	go s.acceptLoop()
	s.log.WithField("addr", ln.Addr().String()).Info("Simulated switch listening")
	return s, nil
}

// Addr 实际监听地址
func (s *Server) Addr() *net.TCPAddr {
	return s.listener.Addr().(*net.TCPAddr)
}

// Stop 关闭监听与所有会话
func (s *Server) Stop() {
	_ = s.listener.Close()
	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	s.log.Info("Simulated switch stopped")
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				time.Sleep(200 * time.Millisecond)
				continue
			}
			return
		}

		// 并发限制
		s.mu.Lock()
		if s.cfg.MaxConn > 0 && s.active >= s.cfg.MaxConn {
			s.mu.Unlock()
			_ = conn.Close()
			s.log.Warn("Reject connection, max_conn exceeded")
			continue
		}
		s.active++
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			s.handleConn(c)
			s.mu.Lock()
			s.active--
			delete(s.conns, c)
			s.mu.Unlock()
			_ = c.Close()
		}(conn)
	}
}

// telnet 协议字节
const (
	iac  = 255
	dont = 254
	do   = 253
	wont = 252
	will = 251
	sb   = 250
	se   = 240

	optEcho = 1
	optSGA  = 3
)

type terminal struct {
	conn net.Conn
	r    *bufio.Reader
	idle time.Duration
}

func (t *terminal) write(s string) error {
	// 统一 CRLF
	s = strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\n", "\r\n")
	_, err := t.conn.Write([]byte(s))
	return err
}

// readByte 读取一个数据字节，过滤 IAC 协商
func (t *terminal) readByte() (byte, error) {
	if t.idle > 0 {
		_ = t.conn.SetReadDeadline(time.Now().Add(t.idle))
	}
	for {
		b, err := t.r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b != iac {
			return b, nil
		}
		cmd, err := t.r.ReadByte()
		if err != nil {
			return 0, err
		}
		switch {
		case cmd == iac:
			return iac, nil
		case cmd >= will && cmd <= dont:
			if _, err := t.r.ReadByte(); err != nil {
				return 0, err
			}
		case cmd == sb:
			for {
				x, err := t.r.ReadByte()
				if err != nil {
					return 0, err
				}
				if x == iac {
					if y, err := t.r.ReadByte(); err != nil || y == se {
						break
					}
				}
			}
		}
	}
}

// readLine 读取一行（去掉 CR/NUL）；echo 为真时回显输入
func (t *terminal) readLine(echo bool) (string, error) {
	var b strings.Builder
	for {
		c, err := t.readByte()
		if err != nil {
			return b.String(), err
		}
		switch c {
		case '\n':
			if echo {
				_ = t.write("\n")
			}
			return b.String(), nil
		case '\r', 0:
			continue
		}
		b.WriteByte(c)
		if echo {
			_, _ = t.conn.Write([]byte{c})
		}
	}
}

func (s *Server) handleConn(c net.Conn) {
	t := &terminal{conn: c, r: bufio.NewReader(c), idle: time.Duration(s.cfg.IdleSeconds) * time.Second}
	log := s.log.WithField("remote", c.RemoteAddr().String())
	log.Debug("Accept connection")

	// 服务端负责回显
	_, _ = c.Write([]byte{iac, will, optEcho, iac, will, optSGA})

	if !s.login(t, log) {
		return
	}
	s.shell(t, log)
}

func (s *Server) login(t *terminal, log *logrus.Entry) bool {
	_ = t.write("\n******************************************************************************\n" +
		"* Copyright (c) 2010-2016 Hewlett Packard Enterprise Development LP          *\n" +
		"* Without the owner's prior written consent,                                 *\n" +
		"* no decompiling or reverse-engineering shall be allowed.                    *\n" +
		"******************************************************************************\n\n" +
		"Login authentication\n\n\nUsername:")

	attempts := s.cfg.MaxLoginAttempts
	if attempts <= 0 {
		attempts = 3
	}
	for i := 0; i < attempts; i++ {
		user, err := t.readLine(true)
		if err != nil {
			return false
		}
		_ = t.write("Password:")
		pass, err := t.readLine(false)
		if err != nil {
			return false
		}
		if strings.TrimSpace(user) == s.cfg.Username && pass == s.cfg.Password {
			log.WithField("user", user).Debug("Login succeeded")
			_ = t.write("\n" + s.prompt())
			return true
		}
		log.WithField("user", user).Debug("Login failed")
		_ = t.write("\n% Login failed!\n\nUsername:")
	}
	return false
}

func (s *Server) prompt() string {
	return "<" + s.cfg.Sysname + ">"
}

func (s *Server) shell(t *terminal, log *logrus.Entry) {
	unlocked := false
	paging := s.cfg.PageLines > 0
	for {
		line, err := t.readLine(true)
		if err != nil {
			log.WithError(err).Debug("Session closed")
			return
		}
		cmd := strings.Join(strings.Fields(line), " ")
		switch {
		case cmd == "":
		case strings.EqualFold(cmd, "quit"):
			return
		case s.cfg.UnlockCommand != "" && strings.EqualFold(cmd, s.cfg.UnlockCommand):
			ok, err := s.unlock(t)
			if err != nil {
				return
			}
			unlocked = unlocked || ok
		case strings.EqualFold(cmd, "screen-length disable"):
			paging = false
			_ = t.write("% Screen-length configuration is disabled for current user.\n")
		default:
			out, found := s.loadCommandOutput(cmd)
			switch {
			case !found:
				_ = t.write("        ^\n % Unrecognized command found at '^' position.\n")
			case s.privileged(cmd) && !unlocked:
				_ = t.write("        ^\n % Unrecognized command found at '^' position.\n")
			default:
				if !s.paginate(t, out, paging) {
					return
				}
			}
		}
		_ = t.write("\n" + s.prompt())
	}
}

func (s *Server) unlock(t *terminal) (bool, error) {
	_ = t.write("All commands can be displayed and executed. Continue? [Y/N]")
	ans, err := t.readLine(true)
	if err != nil {
		return false, err
	}
	if !strings.EqualFold(strings.TrimSpace(ans), "y") {
		return false, nil
	}
	_ = t.write("Please input password:")
	secret, err := t.readLine(false)
	if err != nil {
		return false, err
	}
	if secret != s.cfg.UnlockSecret {
		_ = t.write("\nInvalid password.\n")
		return false, nil
	}
	_ = t.write("\nWarning: Now you enter an all-command mode for developer's testing, some commands may affect operation by wrong use, please carefully use it with our engineer's direction.\n")
	return true, nil
}

// paginate 按页输出，每页之后等待空格；收到其他按键则中止本条输出
func (s *Server) paginate(t *terminal, out string, paging bool) bool {
	lines := strings.Split(strings.TrimRight(strings.ReplaceAll(out, "\r\n", "\n"), "\n"), "\n")
	if !paging || len(lines) <= s.cfg.PageLines {
		_ = t.write(strings.Join(lines, "\n") + "\n")
		return true
	}
	for start := 0; start < len(lines); start += s.cfg.PageLines {
		end := start + s.cfg.PageLines
		if end > len(lines) {
			end = len(lines)
		}
		_ = t.write(strings.Join(lines[start:end], "\n") + "\n")
		if end == len(lines) {
			break
		}
		_ = t.write("  ---- More ----")
		key, err := t.readByte()
		if err != nil {
			return false
		}
		// 擦除分页提示
		_ = t.write("\x1b[16D                \x1b[16D")
		if key != ' ' {
			break
		}
	}
	return true
}

func (s *Server) privileged(cmd string) bool {
	for _, p := range s.cfg.PrivilegedCommands {
		if strings.EqualFold(strings.TrimSpace(p), cmd) {
			return true
		}
	}
	return false
}

// loadCommandOutput 先查覆盖目录，再查内置回显
func (s *Server) loadCommandOutput(cmd string) (string, bool) {
	name := strings.ReplaceAll(strings.ToLower(cmd), " ", "_") + ".txt"
	if dir := strings.TrimSpace(s.cfg.OutputDir); dir != "" {
		if bs, err := os.ReadFile(filepath.Join(dir, name)); err == nil {
			return string(bs), true
		}
	}
	bs, err := builtinOutputs.ReadFile("outputs/" + name)
	if err != nil {
		return "", false
	}
	return string(bs), true
}
