package server

import (
	"bufio"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"math/big"
	"net"
	"time"

	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"
	"github.com/zeusync/trackenv/internal/core/observability/log"
)

// NextProto is the ALPN protocol spoken on QUIC streams.
const NextProto = "trackenv"

// GenerateSelfSignedTLS generates a self-signed TLS certificate for
// localhost, for development and tests.
func GenerateSelfSignedTLS() (*tls.Config, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 62))
	if err != nil {
		return nil, err
	}
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"trackenv"}},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		DNSNames:              []string{"localhost"},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{{Certificate: [][]byte{certDER}, PrivateKey: privateKey}},
		NextProtos:   []string{NextProto},
		MinVersion:   tls.VersionTLS13,
	}, nil
}

func (s *Server) quicConfig() *quic.Config {
	return &quic.Config{
		MaxIdleTimeout:  s.config.IdleTimeout,
		KeepAlivePeriod: s.config.KeepAlive,
	}
}

func (s *Server) listenQUIC() error {
	tlsConfig := s.config.TLS
	if tlsConfig == nil {
		var err error
		if tlsConfig, err = GenerateSelfSignedTLS(); err != nil {
			s.logger.Error("Failed to generate TLS certificate", log.Error(err))
			return errors.Wrap(ErrListenerFailed, err.Error())
		}
	}

	listener, err := quic.ListenAddr(s.config.QUICAddr, tlsConfig, s.quicConfig())
	if err != nil {
		s.logger.Error("Failed to create QUIC listener", log.String("addr", s.config.QUICAddr), log.Error(err))
		return errors.Wrap(ErrListenerFailed, err.Error())
	}
	s.quicListener = listener
	s.logger.Info("QUIC listening", log.String("addr", listener.Addr().String()))

	s.workerGroup.Add(1)
	go s.acceptQUIC()
	return nil
}

// acceptQUIC accepts connections until the listener is closed.
func (s *Server) acceptQUIC() {
	defer s.workerGroup.Done()
	s.logger.Debug("Connection acceptor started")
	defer s.logger.Debug("Connection acceptor stopped")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.stopChan
		cancel()
	}()

	for {
		conn, err := s.quicListener.Accept(ctx)
		if err != nil {
			select {
			case <-s.stopChan:
			default:
				s.logger.Error("Failed to accept connection", log.Error(err))
			}
			return
		}

		s.logger.Debug("QUIC connection accepted", log.String("remote_addr", conn.RemoteAddr().String()))
		s.workerGroup.Add(1)
		go s.handleQUICConn(ctx, conn)
	}
}

// handleQUICConn serves every stream the peer opens as its own session.
func (s *Server) handleQUICConn(ctx context.Context, conn *quic.Conn) {
	defer s.workerGroup.Done()
	defer func() { _ = conn.CloseWithError(0, "connection closed") }()

	for {
		stream, err := conn.AcceptStream(ctx)
		if err != nil {
			return
		}
		s.workerGroup.Add(1)
		go s.handleQUICStream(stream)
	}
}

func (s *Server) handleQUICStream(stream *quic.Stream) {
	defer s.workerGroup.Done()

	closer := func() error {
		stream.CancelRead(0)
		return stream.Close()
	}
	ss, err := s.openSession("quic", closer)
	if err != nil {
		s.logger.Warn("Rejecting session", log.Error(err))
		out, _ := json.Marshal(Response{Error: err.Error()})
		_ = stream.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		_, _ = stream.Write(append(out, '\n'))
		_ = closer()
		return
	}
	defer s.closeSession(ss)

	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 4096), s.config.MaxMessageSize)
	for {
		_ = stream.SetReadDeadline(time.Now().Add(s.config.IdleTimeout))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				ss.logger.Debug("QUIC read ended", log.Error(err))
			}
			return
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}

		err := s.process(ss, scanner.Bytes(), func(reply []byte) error {
			_ = stream.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			_, err := stream.Write(reply)
			return err
		})
		if err != nil {
			ss.logger.Warn("QUIC write failed", log.Error(err))
			return
		}
	}
}
