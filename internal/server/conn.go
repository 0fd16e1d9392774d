package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"

	"github.com/rs/zerolog"

	"github.com/emirk/academia/internal/app/services"
	"github.com/emirk/academia/internal/metrics"
	"github.com/emirk/academia/internal/pkg/apperrors"
	"github.com/emirk/academia/internal/protocol"
)

// maxLineBytes caps a single request line. No legitimate command comes close.
const maxLineBytes = 1 << 20

// conn is one client connection with its ephemeral session state. Commands
// are processed to completion one at a time; there is no pipelining.
type conn struct {
	server *Server
	conn   net.Conn
	logger zerolog.Logger

	loggedIn bool
	identity services.Identity
}

// serve runs the read-dispatch-respond loop until the client disconnects,
// sends QUIT, or a transport error ends the stream. Protocol-level errors
// never terminate the loop.
func (c *conn) serve(ctx context.Context) {
	defer c.conn.Close()
	metrics.ActiveConnections.Inc()
	defer metrics.ActiveConnections.Dec()

	c.logger.Debug().Msg("Connection opened")
	defer c.logger.Debug().Msg("Connection closed")

	reader := bufio.NewReader(c.conn)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, tooLong, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.logger.Warn().Err(err).Msg("Error reading request")
			}
			return
		}

		var response string
		var quit bool
		if tooLong {
			// An oversized line is answered like any other malformed
			// request; the connection survives.
			response = protocol.ErrorLine(apperrors.NewCustomError(apperrors.ErrMalformedRequest, "request line too long"))
			metrics.ObserveCommand("INVALID", protocol.ErrorCode(apperrors.ErrMalformedRequest))
		} else {
			response, quit = c.handleLine(line)
		}
		if _, err := c.conn.Write([]byte(response + "\n")); err != nil {
			c.logger.Warn().Err(err).Msg("Error writing response")
			return
		}
		if quit {
			return
		}
	}
}

// readLine reads one newline-terminated request line. Lines past
// maxLineBytes are consumed to the newline and reported as too long, so a
// single oversized request cannot wedge the stream.
func readLine(r *bufio.Reader) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return "", tooLong, err
		}
		if !tooLong {
			buf = append(buf, chunk...)
			if len(buf) > maxLineBytes {
				tooLong = true
				buf = nil
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

// handleLine processes one request line and returns the response line plus
// whether the connection should close.
func (c *conn) handleLine(line string) (string, bool) {
	req, spec, err := protocol.Parse(line)
	if err != nil {
		metrics.ObserveCommand("INVALID", protocol.ErrorCode(err))
		return protocol.ErrorLine(err), false
	}

	response, quit := c.dispatch(req, spec)

	status := "ok"
	if code := responseCode(response); code != "" {
		status = code
	}
	metrics.ObserveCommand(req.Verb, status)
	return response, quit
}

// dispatch applies the session state machine and routes to the role
// handlers.
func (c *conn) dispatch(req protocol.Request, spec protocol.Spec) (string, bool) {
	switch req.Verb {
	case protocol.VerbQuit:
		return protocol.OK("bye"), true
	case protocol.VerbLogin:
		return c.handleLogin(req.Args), false
	}

	if !c.loggedIn {
		return protocol.ErrorLine(apperrors.ErrAuthenticationRequired), false
	}
	if !spec.AllowsRole(c.identity.Role) {
		return protocol.ErrorLine(apperrors.ErrUnauthorized), false
	}

	switch req.Verb {
	case protocol.VerbLogout:
		return c.handleLogout(), false
	case protocol.VerbWhoAmI:
		return c.handleWhoAmI(), false
	case protocol.VerbPasswd:
		return c.handlePasswd(req.Args), false

	case protocol.VerbAddUser:
		return c.handleAddUser(req.Args), false
	case protocol.VerbActivateUser:
		return c.handleSetUserActive(req.Args, true), false
	case protocol.VerbDeactivateUser:
		return c.handleSetUserActive(req.Args, false), false
	case protocol.VerbAddCourse:
		return c.handleAddCourse(req.Args), false
	case protocol.VerbEditCourse:
		return c.handleEditCourse(req.Args), false
	case protocol.VerbListUsers:
		return c.handleListUsers(), false
	case protocol.VerbListCourses:
		return c.handleListCourses(), false
	case protocol.VerbListEnrollments:
		return c.handleListEnrollments(), false

	case protocol.VerbEnroll:
		return c.handleEnroll(req.Args), false
	case protocol.VerbDrop:
		return c.handleDrop(req.Args), false
	case protocol.VerbMyCourses:
		return c.handleMyCourses(), false

	case protocol.VerbRoster:
		return c.handleRoster(req.Args), false
	}

	// Unreachable while the verb table and this switch agree.
	return protocol.ErrorLine(apperrors.ErrUnknownCommand), false
}

// handleLogin authenticates the connection and binds the identity to it
func (c *conn) handleLogin(args []string) string {
	if c.loggedIn {
		return protocol.ErrorLine(apperrors.NewCustomError(apperrors.ErrMalformedRequest, "already logged in"))
	}

	identity, err := c.server.auth.Login(args[0], args[1])
	if err != nil {
		c.logger.Info().Str("username", args[0]).Msg("Login rejected")
		return protocol.ErrorLine(err)
	}

	c.loggedIn = true
	c.identity = identity
	c.logger.Info().Str("username", identity.Username).Str("role", string(identity.Role)).Msg("Login accepted")
	return protocol.OK(formatID(identity.UserID), string(identity.Role))
}

func (c *conn) handleLogout() string {
	c.logger.Info().Str("username", c.identity.Username).Msg("Logout")
	c.loggedIn = false
	c.identity = services.Identity{}
	return protocol.OK("bye")
}

func (c *conn) handleWhoAmI() string {
	return protocol.OK(formatID(c.identity.UserID), c.identity.Username, string(c.identity.Role))
}

// handlePasswd changes the caller's own password
func (c *conn) handlePasswd(args []string) string {
	if err := c.server.store.ChangePassword(c.identity.UserID, args[0]); err != nil {
		return protocol.ErrorLine(err)
	}
	if err := c.server.persist(); err != nil {
		return protocol.ErrorLine(err)
	}
	return protocol.OK()
}

// responseCode extracts the error token from a response line, or "" for OK
func responseCode(response string) string {
	const prefix = protocol.StatusError + " "
	if len(response) <= len(prefix) || response[:len(prefix)] != prefix {
		return ""
	}
	rest := response[len(prefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == ' ' {
			return rest[:i]
		}
	}
	return rest
}
