// Package udpnoise is the reference protocol.Transport implementation: a
// Noise XX-encrypted channel over a UDP net.PacketConn. It is reworked
// from the teacher's P2PNode/P2PConnection (go/network.go), which runs
// the same handshake over net.Conn (TCP); this package adapts it to the
// unordered, unreliable datagram channel the presence exchange assumes
// instead of a reliable byte stream.
package udpnoise

import (
	"context"
	"crypto/rand"
	"fmt"
	"net"
	"time"

	"github.com/flynn/noise"

	"github.com/alice-net/presence/errs"
)

var cipherSuite = noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashSHA256)

// GenerateKeypair produces a fresh Curve25519 static keypair for the Noise
// handshake, matching the teacher's NewP2PNode key generation.
func GenerateKeypair() (noise.DHKey, error) {
	key, err := noise.DH25519.GenerateKeypair(rand.Reader)
	if err != nil {
		return noise.DHKey{}, fmt.Errorf("udpnoise: generating static keypair: %w", err)
	}
	return key, nil
}

// Transport is a Noise XX-encrypted datagram channel bound to exactly one
// remote peer address, implementing protocol.Transport.
type Transport struct {
	conn       net.PacketConn
	remoteAddr net.Addr
	send       *noise.CipherState
	recv       *noise.CipherState
}

// maxDatagram bounds a single encrypted read; proof messages are 24 bytes
// plus AEAD overhead, well under any realistic MTU.
const maxDatagram = 4096

// DialInitiator opens a UDP socket to remoteAddr and performs the Noise XX
// handshake as the initiator.
func DialInitiator(ctx context.Context, remoteAddr string, staticKey noise.DHKey) (*Transport, error) {
	addr, err := net.ResolveUDPAddr("udp", remoteAddr)
	if err != nil {
		return nil, fmt.Errorf("udpnoise: resolving %s: %w", remoteAddr, err)
	}
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("udpnoise: opening socket: %w", err)
	}
	return handshake(ctx, conn, addr, staticKey, true)
}

// AcceptResponder waits for the first handshake datagram on conn from any
// peer and completes the Noise XX handshake as the responder.
func AcceptResponder(ctx context.Context, conn net.PacketConn, staticKey noise.DHKey) (*Transport, error) {
	buf := make([]byte, maxDatagram)
	n, remoteAddr, err := readWithContext(ctx, conn, buf)
	if err != nil {
		return nil, err
	}
	return completeResponderHandshake(conn, remoteAddr, staticKey, buf[:n])
}

func handshake(ctx context.Context, conn net.PacketConn, remoteAddr net.Addr, staticKey noise.DHKey, initiator bool) (*Transport, error) {
	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:   cipherSuite,
		Pattern:       noise.HandshakeXX,
		Initiator:     initiator,
		StaticKeypair: staticKey,
	})
	if err != nil {
		return nil, fmt.Errorf("udpnoise: initializing handshake state: %w", err)
	}

	// -> e
	msg1, _, _, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("udpnoise: writing handshake message 1: %w", err)
	}
	if _, err := conn.WriteTo(msg1, remoteAddr); err != nil {
		return nil, fmt.Errorf("udpnoise: sending handshake message 1: %w: %w", errs.ErrTransport, err)
	}

	// <- e, ee, s, es
	buf := make([]byte, maxDatagram)
	n, _, err := readWithContext(ctx, conn, buf)
	if err != nil {
		return nil, err
	}
	if _, _, _, err := hs.ReadMessage(nil, buf[:n]); err != nil {
		return nil, fmt.Errorf("udpnoise: reading handshake message 2: %w", err)
	}

	// -> s, se
	msg3, cs0, cs1, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("udpnoise: writing handshake message 3: %w", err)
	}
	if _, err := conn.WriteTo(msg3, remoteAddr); err != nil {
		return nil, fmt.Errorf("udpnoise: sending handshake message 3: %w: %w", errs.ErrTransport, err)
	}

	return &Transport{conn: conn, remoteAddr: remoteAddr, send: cs0, recv: cs1}, nil
}

func completeResponderHandshake(conn net.PacketConn, remoteAddr net.Addr, staticKey noise.DHKey, msg1 []byte) (*Transport, error) {
	hs, err := noise.NewHandshakeState(noise.Config{
		CipherSuite:   cipherSuite,
		Pattern:       noise.HandshakeXX,
		Initiator:     false,
		StaticKeypair: staticKey,
	})
	if err != nil {
		return nil, fmt.Errorf("udpnoise: initializing handshake state: %w", err)
	}

	if _, _, _, err := hs.ReadMessage(nil, msg1); err != nil {
		return nil, fmt.Errorf("udpnoise: reading handshake message 1: %w", err)
	}

	msg2, _, _, err := hs.WriteMessage(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("udpnoise: writing handshake message 2: %w", err)
	}
	if _, err := conn.WriteTo(msg2, remoteAddr); err != nil {
		return nil, fmt.Errorf("udpnoise: sending handshake message 2: %w: %w", errs.ErrTransport, err)
	}

	buf := make([]byte, maxDatagram)
	n, _, err := readWithContext(context.Background(), conn, buf)
	if err != nil {
		return nil, err
	}
	_, cs1, cs0, err := hs.ReadMessage(nil, buf[:n])
	if err != nil {
		return nil, fmt.Errorf("udpnoise: reading handshake message 3: %w", err)
	}

	return &Transport{conn: conn, remoteAddr: remoteAddr, send: cs0, recv: cs1}, nil
}

// Send encrypts b and writes it as one datagram to the bound remote peer.
func (t *Transport) Send(ctx context.Context, b []byte) error {
	ct := t.send.Encrypt(nil, nil, b)
	if deadline, ok := ctx.Deadline(); ok {
		_ = t.conn.SetWriteDeadline(deadline)
	}
	if _, err := t.conn.WriteTo(ct, t.remoteAddr); err != nil {
		return fmt.Errorf("udpnoise: send: %w: %v", errs.ErrTransport, err)
	}
	return nil
}

// Recv reads, authenticates, and decrypts the next datagram on the socket,
// honoring timeout. The sender address is not checked; a datagram that was
// not encrypted for this channel fails decryption and is returned as an
// error.
func (t *Transport) Recv(ctx context.Context, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		_ = t.conn.SetReadDeadline(time.Now().Add(timeout))
	}
	buf := make([]byte, maxDatagram)
	n, _, err := readWithContext(ctx, t.conn, buf)
	if err != nil {
		return nil, err
	}
	pt, err := t.recv.Decrypt(nil, nil, buf[:n])
	if err != nil {
		return nil, fmt.Errorf("udpnoise: decrypting datagram: %w: %v", errs.ErrTransport, err)
	}
	return pt, nil
}

// Close releases the underlying socket.
func (t *Transport) Close() error {
	return t.conn.Close()
}

// readWithContext honors ctx's deadline (if any) via the PacketConn's own
// read deadline, since net.PacketConn has no native context support.
func readWithContext(ctx context.Context, conn net.PacketConn, buf []byte) (int, net.Addr, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}
	n, addr, err := conn.ReadFrom(buf)
	if err != nil {
		return 0, nil, fmt.Errorf("udpnoise: reading datagram: %w: %v", errs.ErrTransport, err)
	}
	return n, addr, nil
}
