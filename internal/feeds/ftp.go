package feeds

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"path"
	"strconv"

	"github.com/jlaffaye/ftp"
)

// FTPSource downloads a feed file from an FTP server.
type FTPSource struct {
	host     string
	port     int
	path     string
	username string
	password string
}

// NewFTPSource creates an FTP feed source. Port 0 means the standard
// port 21.
func NewFTPSource(host string, port int, filePath, username, password string) *FTPSource {
	if port == 0 {
		port = 21
	}
	return &FTPSource{
		host:     host,
		port:     port,
		path:     filePath,
		username: username,
		password: password,
	}
}

func (s *FTPSource) Headers(ctx context.Context) ([]string, error) {
	return tableHeaders(ctx, s)
}

func (s *FTPSource) Rows(ctx context.Context) (*Table, error) {
	conn, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Quit()

	resp, err := conn.Retr(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %q: %w", s.path, err)
	}
	data, err := io.ReadAll(resp)
	resp.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", s.path, err)
	}

	return Parse(path.Base(s.path), bytes.NewReader(data))
}

func (s *FTPSource) TestConnection(ctx context.Context) error {
	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	return conn.Quit()
}

func (s *FTPSource) connect(ctx context.Context) (*ftp.ServerConn, error) {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(defaultDialTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	if err := conn.Login(s.username, s.password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("FTP login failed for %s: %w", addr, err)
	}
	return conn, nil
}
