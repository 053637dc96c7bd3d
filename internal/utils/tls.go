package utils

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"visitmap/internal/logger"
)

// certRenewBefore 剩余有效期低于该值时重新生成
const certRenewBefore = 7 * 24 * time.Hour

// CertOptions 自签名证书参数；Hosts 第一项作为 CN，IP 形式的条目写入 IP SAN，其余写入 DNS SAN
type CertOptions struct {
	Hosts []string
	Valid time.Duration
}

// CertOptionsFromEnv 读取 TLS_HOSTS（逗号分隔）与 TLS_CERT_DAYS
func CertOptionsFromEnv() CertOptions {
	var hosts []string
	for _, h := range strings.Split(EnvOr("TLS_HOSTS", "visitmap.local,localhost,127.0.0.1,::1"), ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return CertOptions{Hosts: hosts, Valid: time.Duration(EnvInt("TLS_CERT_DAYS", 365)) * 24 * time.Hour}
}

// 文档注释：确保 TLS 证书可用
// 背景：TLS_ENABLE=true 且未提供证书时，为本地部署生成自签名证书；证书过期或七天内到期时重新生成。
// 约束：现有证书可解析且仍在有效期内时不做任何事（即便 Hosts 变化）；Hosts 为空时使用 localhost。
func EnsureSelfSignedCert(certPath, keyPath string, opt CertOptions) error {
	if fileExists(keyPath) {
		if notAfter, err := certNotAfter(certPath); err == nil && time.Until(notAfter) > certRenewBefore {
			return nil
		}
	}
	if len(opt.Hosts) == 0 {
		opt.Hosts = []string{"localhost"}
	}
	if opt.Valid <= 0 {
		opt.Valid = 365 * 24 * time.Hour
	}
	for _, p := range []string{certPath, keyPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
	}
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return err
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return err
	}
	now := time.Now()
	tmpl := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: opt.Hosts[0], Organization: []string{"visitmap"}},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(opt.Valid),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range opt.Hosts {
		if ip := net.ParseIP(h); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
		} else {
			tmpl.DNSNames = append(tmpl.DNSNames, h)
		}
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		return err
	}
	if err := writePEM(certPath, "CERTIFICATE", der, 0o644); err != nil {
		return err
	}
	logger.L().Info("tls_cert_generated", "cert", certPath, "hosts", opt.Hosts, "not_after", tmpl.NotAfter)
	return writePEM(keyPath, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(priv), 0o600)
}

func certNotAfter(path string) (time.Time, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, err
	}
	blk, _ := pem.Decode(b)
	if blk == nil || blk.Type != "CERTIFICATE" {
		return time.Time{}, errors.New("tls: no certificate block")
	}
	c, err := x509.ParseCertificate(blk.Bytes)
	if err != nil {
		return time.Time{}, err
	}
	return c.NotAfter, nil
}

func writePEM(path, typ string, b []byte, mode os.FileMode) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if err := pem.Encode(f, &pem.Block{Type: typ, Bytes: b}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
