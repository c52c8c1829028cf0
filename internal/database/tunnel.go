package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/dbsmedya/idseek/internal/config"
	"github.com/dbsmedya/idseek/internal/logger"
)

var tunnelSeq atomic.Int64

// Tunnel forwards MySQL connections through an SSH jump host. It registers a
// go-sql-driver/mysql network name so DSNs can dial through it.
type Tunnel struct {
	client  *ssh.Client
	network string
}

// OpenTunnel connects to the SSH host described by cfg.
func OpenTunnel(cfg *config.SSHConfig, log *logger.Logger) (*Tunnel, error) {
	if log == nil {
		log = logger.NewDefault()
	}

	auth, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}
	hostKey, err := hostKeyCallback(cfg, log)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	client, err := ssh.Dial("tcp", addr, &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", addr, err)
	}
	log.Infof("SSH tunnel established via %s", addr)

	t := &Tunnel{
		client:  client,
		network: fmt.Sprintf("ssh%d", tunnelSeq.Add(1)),
	}
	mysql.RegisterDialContext(t.network, t.DialContext)
	return t, nil
}

// Network is the DSN network name that dials through this tunnel.
func (t *Tunnel) Network() string {
	return t.network
}

// DialContext opens a TCP connection to addr from the SSH host.
func (t *Tunnel) DialContext(ctx context.Context, addr string) (net.Conn, error) {
	return t.client.DialContext(ctx, "tcp", addr)
}

// Close shuts down the SSH client and every connection forwarded over it.
func (t *Tunnel) Close() error {
	return t.client.Close()
}

func authMethods(cfg *config.SSHConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if cfg.KeyFile != "" {
		key, err := os.ReadFile(cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("read ssh key %q: %w", cfg.KeyFile, err)
		}
		signer, err := parseKey(key, cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("parse ssh key %q: %w", cfg.KeyFile, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" && cfg.KeyFile == "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}
	if len(methods) == 0 {
		return nil, errors.New("ssh requires key_file or password")
	}
	return methods, nil
}

// parseKey parses a private key. With a key file, password is its passphrase.
func parseKey(pem []byte, passphrase string) (ssh.Signer, error) {
	signer, err := ssh.ParsePrivateKey(pem)
	if err == nil {
		return signer, nil
	}
	var missing *ssh.PassphraseMissingError
	if errors.As(err, &missing) && passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(pem, []byte(passphrase))
	}
	return nil, err
}

func hostKeyCallback(cfg *config.SSHConfig, log *logger.Logger) (ssh.HostKeyCallback, error) {
	if cfg.KnownHostsFile == "" {
		log.Warn("ssh.known_hosts_file is not set; host key will NOT be verified")
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(cfg.KnownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("load known hosts %q: %w", cfg.KnownHostsFile, err)
	}
	return cb, nil
}
