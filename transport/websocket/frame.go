package websocket

import (
	"bufio"
	"crypto/sha1" //nolint: gosec // RFC 6455 requires SHA-1 for the handshake
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Static GUID defined in RFC 6455 for WebSocket.
const websocketGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

const (
	opContinuation byte = 0x0
	opText         byte = 0x1
	opClose        byte = 0x8
	opPing         byte = 0x9
	opPong         byte = 0xA

	maxPayloadSize        = 1 << 16
	maxControlPayloadSize = 125
)

var (
	ErrFragmentedFrame  = errors.New("fragmented frames are not supported")
	ErrUnsupportedFrame = errors.New("only text frames are supported")
	ErrFrameTooLarge    = errors.New("frame payload is too large")
	ErrUnmaskedFrame    = errors.New("client frames must be masked")
	ErrControlFrame     = errors.New("control frames must be final and at most 125 bytes")
)

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool
	opCode  byte
	masked  bool
	payload []byte
}

func (that frame) isControl() bool {
	return that.opCode&0x8 != 0
}

// GenerateAcceptKey - generates key for WebSocket handshake.
func GenerateAcceptKey(key string) string {
	h := sha1.New() //nolint: gosec // RFC 6455 requires the use of SHA-1 for WebSocket

	h.Write([]byte(key + websocketGUID))

	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// writeFrame writes an unmasked server frame and flushes it.
func writeFrame(w *bufio.Writer, frameData frame) error {
	header := make([]byte, 2, 10)
	header[0] = frameData.opCode

	if frameData.isFin {
		header[0] |= 0x80
	}

	length := uint64(len(frameData.payload))

	switch {
	case length < 126:
		header[1] = byte(length)
	case length < 1<<16:
		header[1] = 126
		header = binary.BigEndian.AppendUint16(header, uint16(length))
	default:
		header[1] = 127
		header = binary.BigEndian.AppendUint64(header, length)
	}

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write frame header: %w", err)
	}

	if _, err := w.Write(frameData.payload); err != nil {
		return fmt.Errorf("failed to write frame payload: %w", err)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return nil
}

// readClientFrame reads a frame sent by a client, which must be masked.
func readClientFrame(r io.Reader) (frame, error) {
	result, err := readFrame(r)
	if err != nil {
		return frame{}, err
	}

	if !result.masked {
		return frame{}, ErrUnmaskedFrame
	}

	return result, nil
}

// readFrame reads one frame and unmasks its payload.
func readFrame(r io.Reader) (frame, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(r, header); err != nil {
		return frame{}, fmt.Errorf("failed to read header: %w", err)
	}

	result := frame{
		isFin:  header[0]&0x80 != 0,
		opCode: header[0] & 0x0f,
		masked: header[1]&0x80 != 0,
	}

	size, err := readPayloadLength(r, header[1]&0x7f)
	if err != nil {
		return frame{}, err
	}

	if result.isControl() && (!result.isFin || size > maxControlPayloadSize) {
		return frame{}, fmt.Errorf("%w: opcode %#x, %d bytes", ErrControlFrame, result.opCode, size)
	}

	if size > maxPayloadSize {
		return frame{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}

	var mask [4]byte
	if result.masked {
		if _, err = io.ReadFull(r, mask[:]); err != nil {
			return frame{}, fmt.Errorf("failed to read mask: %w", err)
		}
	}

	result.payload = make([]byte, size)
	if _, err = io.ReadFull(r, result.payload); err != nil {
		return frame{}, fmt.Errorf("failed to read payload: %w", err)
	}

	if result.masked {
		for i := range result.payload {
			result.payload[i] ^= mask[i%4]
		}
	}

	return result, nil
}

func readPayloadLength(r io.Reader, payloadLen byte) (uint64, error) {
	switch payloadLen {
	case 126:
		length := make([]byte, 2)
		if _, err := io.ReadFull(r, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}

		return uint64(binary.BigEndian.Uint16(length)), nil
	case 127:
		length := make([]byte, 8)
		if _, err := io.ReadFull(r, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}

		return binary.BigEndian.Uint64(length), nil
	default:
		return uint64(payloadLen), nil
	}
}
