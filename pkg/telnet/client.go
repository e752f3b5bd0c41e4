package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ziutek/telnet"

	"github.com/switchcollectorpro/switchcollectorpro/internal/util"
)

// Transport 行传输接口：会话状态机只依赖这三个操作，便于在测试中替换
type Transport interface {
	// ReadUntil 读取直到出现任一分隔符（包含分隔符本身）；超时返回 *TimeoutError，已读数据丢弃
	ReadUntil(delims []string, timeout time.Duration) (string, error)
	// Write 写入原始字节
	Write(b []byte) error
	// Close 关闭连接
	Close() error
}

// Dialer 建立传输连接的函数
type Dialer func(ctx context.Context, host string, port int, timeout time.Duration) (Transport, error)

// ConnectionInfo Telnet连接信息
type ConnectionInfo struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Address 返回 host:port
func (i ConnectionInfo) Address() string {
	return net.JoinHostPort(i.Host, fmt.Sprintf("%d", i.Port))
}

// 写入超时：设备侧接收窗口满时避免永久阻塞
const writeTimeout = 10 * time.Second

// Client Telnet客户端（明文TCP，处理 IAC 协商）
type Client struct {
	conn  *telnet.Conn
	addr  string
	mutex sync.Mutex
}

// Dial 连接Telnet服务器，满足 Dialer 签名
func Dial(ctx context.Context, host string, port int, timeout time.Duration) (Transport, error) {
	address := net.JoinHostPort(host, fmt.Sprintf("%d", port))

	// 使用context控制连接超时
	dialer := &net.Dialer{
		Timeout: timeout,
	}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, &ConnectError{Addr: address, Err: err}
	}

	tc, err := telnet.NewConn(conn)
	if err != nil {
		conn.Close()
		return nil, &ConnectError{Addr: address, Err: err}
	}
	// 设备期望 CRLF；写入时将 \n 自动转换为 \r\n
	tc.SetUnixWriteMode(true)

	return &Client{conn: tc, addr: address}, nil
}

// ReadUntil 读取直到任一分隔符出现
func (c *Client) ReadUntil(delims []string, timeout time.Duration) (string, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.conn == nil {
		return "", &IOError{Op: "read", Err: net.ErrClosed}
	}
	if len(delims) == 0 {
		return "", &IOError{Op: "read", Err: errors.New("no delimiter given")}
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return "", &IOError{Op: "set read deadline", Err: err}
	}
	defer c.conn.SetReadDeadline(time.Time{})

	data, err := c.conn.ReadUntil(delims...)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return "", &TimeoutError{Delims: delims}
		}
		return "", &IOError{Op: "read", Err: err}
	}
	return util.EnsureUTF8Bytes(data), nil
}

// Write 写入原始字节
func (c *Client) Write(b []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.conn == nil {
		return &IOError{Op: "write", Err: net.ErrClosed}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	defer c.conn.SetWriteDeadline(time.Time{})
	if _, err := c.conn.Write(b); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	return nil
}

// Close 关闭Telnet连接
func (c *Client) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// RemoteAddr 对端地址
func (c *Client) RemoteAddr() string {
	return c.addr
}
