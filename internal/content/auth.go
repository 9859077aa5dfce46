package content

import (
	"context"
	"net/http"
	"strings"

	"github.com/folioadmin/folioadmin/internal/apiclient"
)

const (
	loginPath      = "/user/login"
	newsletterPath = "/subscribe/send-newsletter"

	msgInvalidCredentials = "Invalid credentials"
)

// SessionWriter receives the token of a successful login.
type SessionWriter interface {
	LoginSuccess(token string) error
}

// Login posts credentials and, on success, hands the returned token to
// sessions. The envelope's Message is the backend's reason on failure.
func (s *Service) Login(ctx context.Context, creds Credentials, sessions SessionWriter) apiclient.Response {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return apiclient.Failure(apiclient.KindValidation, "Email and password are required")
	}
	if res, ok := s.check(creds); !ok {
		return res
	}

	res := s.api.Do(ctx, apiclient.Request{URL: loginPath, Method: http.MethodPost, Data: creds})
	if !res.Success {
		if res.Status != apiclient.StatusNone && messageField(res) == "" {
			res.Message = msgInvalidCredentials
		}
		s.logger.Warn().Int("status", res.Status).Str("kind", string(res.Kind)).Msg("Login failed")
		return res
	}

	var token string
	if ok, err := res.DecodeField("token", &token); err != nil || !ok || token == "" {
		res.Success = false
		res.Kind = apiclient.KindInvalid
		res.Message = "login response did not include a token"
		return res
	}

	if err := sessions.LoginSuccess(token); err != nil {
		// The session is authenticated; only persistence failed.
		s.logger.Warn().Err(err).Msg("Logged in without persisting the token")
	}
	s.logger.Info().Str("email", creds.Email).Msg("Logged in")
	return res
}

// SendNewsletter mails the subscribers.
func (s *Service) SendNewsletter(ctx context.Context, n Newsletter) apiclient.Response {
	if n.SendToAll {
		n.Recipients = []string{}
	} else if len(n.Recipients) == 0 {
		return apiclient.Failure(apiclient.KindValidation, "recipients is required unless sending to all subscribers")
	}
	if res, ok := s.check(n); !ok {
		return res
	}
	token, res, ok := s.requireToken()
	if !ok {
		return res
	}

	res = s.api.Do(ctx, apiclient.Request{URL: newsletterPath, Method: http.MethodPost, Data: n, Token: token})
	s.logOutcome(Subscribers, "send", newsletterPath, res)
	return res
}

func messageField(res apiclient.Response) string {
	var msg string
	if ok, err := res.DecodeField("message", &msg); err == nil && ok {
		return msg
	}
	return ""
}
