// Package server implements the TCP accept loop of spec §4.7: bind,
// accept in a loop logging and continuing past accept errors, and
// dispatch each connection to the worker pool as one request/response
// job. Lifecycle shape (mu-guarded running flag, wg-joined in-flight
// connection jobs, Shutdown closing the listener) is adapted from the
// teacher's IndexServer.Start/Shutdown (internal/server/server.go),
// swapped from an HTTP+Unix-socket server onto a bare TCP accept loop.
package server

import (
	"encoding/json"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/standardbeagle/searchd/internal/index"
	"github.com/standardbeagle/searchd/internal/protocol"
	"github.com/standardbeagle/searchd/internal/workerpool"
)

const connTimeout = 10 * time.Second

// Server accepts connections on a TCP listener and dispatches each one to
// a worker pool.
type Server struct {
	log  zerolog.Logger
	ix   *index.Index
	pool *workerpool.Pool

	mu       sync.Mutex
	running  bool
	listener net.Listener
	wg       sync.WaitGroup
}

// New returns a Server that answers requests against ix using a pool of
// threadCount workers.
func New(log zerolog.Logger, ix *index.Index, threadCount int) *Server {
	return &Server{log: log, ix: ix, pool: workerpool.New(threadCount)}
}

// Serve binds address and runs the accept loop until Shutdown is called.
// Any other accept error is logged and the loop keeps accepting. It blocks
// until the accept loop exits.
func (s *Server) Serve(address string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errAlreadyRunning
	}
	ln, err := net.Listen("tcp", address)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.listener = ln
	s.running = true
	s.mu.Unlock()

	s.log.Info().Str("address", address).Msg("server: listening")
	s.acceptLoop(ln)
	return nil
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			stopped := !s.running
			s.mu.Unlock()
			if stopped {
				return
			}
			s.log.Error().Err(err).Msg("server: accept error")
			continue
		}

		s.wg.Add(1)
		s.pool.Submit(func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		})
	}
}

// Shutdown stops the accept loop, waits for in-flight connections to
// finish, and closes the worker pool, per the teacher's
// Start/Shutdown symmetry.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	ln := s.listener
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.wg.Wait()
	s.pool.Close()
	return err
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	deadline := time.Now().Add(connTimeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		s.log.Error().Err(err).Msg("server: set read deadline")
		return
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		s.log.Error().Err(err).Msg("server: set write deadline")
		return
	}

	req, err := protocol.DecodeRequest(conn)
	if err != nil {
		s.log.Error().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("server: decode request")
		return
	}

	if err := s.dispatch(conn, req); err != nil {
		s.log.Error().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("server: dispatch")
	}
}

func (s *Server) dispatch(conn net.Conn, req protocol.Request) error {
	switch req.Kind {
	case protocol.KindPing:
		return protocol.WritePong(conn)

	case protocol.KindQuery:
		results := s.ix.Query(req.Payload)
		if results == nil {
			results = []index.Result{}
		}
		payload, err := json.Marshal(results)
		if err != nil {
			return protocol.WriteError(conn, "Error serializing query result")
		}
		return protocol.WriteQueryResult(conn, payload)

	case protocol.KindQueryFile:
		return s.dispatchQueryFile(conn, req.Payload)

	default:
		return protocol.WriteError(conn, "unknown request kind")
	}
}

func (s *Server) dispatchQueryFile(conn net.Conn, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return protocol.WriteError(conn, "file does not exist")
	}
	if !info.Mode().IsRegular() {
		return protocol.WriteError(conn, "path is not a file")
	}

	f, err := os.Open(path)
	if err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("server: open file")
		return protocol.WriteError(conn, "Error opening file")
	}
	defer f.Close()

	return protocol.WriteFileResult(conn, info.Size(), f)
}

type serverErr string

func (e serverErr) Error() string { return string(e) }

const errAlreadyRunning = serverErr("server: already running")
