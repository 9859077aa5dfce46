// Package content exposes the portfolio's content types (blogs, projects,
// skills, ...) as typed operations over the backend API. Every operation
// returns an apiclient.Response, so callers branch once on Success whether
// the failure came from validation, a missing token or the backend.
package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/folioadmin/folioadmin/internal/apiclient"
)

const msgNotAuthenticated = "not authenticated. Please log in first"

// TokenSource supplies the bearer token for write operations.
type TokenSource interface {
	Token() string
}

// FormEncoder is implemented by payloads sent as multipart.
type FormEncoder interface {
	Form() (*apiclient.Form, error)
}

// Service performs content operations against the backend.
type Service struct {
	api      apiclient.Doer
	tokens   TokenSource
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewService creates a content service.
func NewService(api apiclient.Doer, tokens TokenSource, logger zerolog.Logger) *Service {
	return &Service{
		api:      api,
		tokens:   tokens,
		validate: newValidator(),
		logger:   logger.With().Str("component", "content").Logger(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire/file names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "yaml"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// Listing is a list response with its decoded records.
type Listing struct {
	apiclient.Response
	Items []Item
}

// List fetches every record of r.
func (s *Service) List(ctx context.Context, r Resource) Listing {
	req, res, ok := s.listRequest(r)
	if !ok {
		return Listing{Response: res}
	}
	return decodeList(r, s.api.Do(ctx, req))
}

func (s *Service) listRequest(r Resource) (apiclient.Request, apiclient.Response, bool) {
	req := apiclient.Request{URL: r.Path, Method: http.MethodGet}
	if r.Protected {
		token, res, ok := s.requireToken()
		if !ok {
			return req, res, false
		}
		req.Token = token
	}
	return req, apiclient.Response{}, true
}

func decodeList(r Resource, res apiclient.Response) Listing {
	if !res.Success {
		return Listing{Response: res}
	}

	var items []Item
	var err error
	if r.ListField == "" {
		err = res.Decode(&items)
	} else {
		_, err = res.DecodeField(r.ListField, &items)
	}
	if err != nil {
		return Listing{Response: invalid(res, err)}
	}
	return Listing{Response: res, Items: items}
}

// Get fetches one record. A 404 or an empty body both come back as
// KindNotFound.
func (s *Service) Get(ctx context.Context, r Resource, id string) (Item, apiclient.Response) {
	if r.ReadOnly {
		return nil, apiclient.Failure(apiclient.KindValidation, fmt.Sprintf("%s records cannot be fetched individually", r.Name))
	}
	if strings.TrimSpace(id) == "" {
		return nil, apiclient.Failure(apiclient.KindValidation, "id is required")
	}

	res := s.api.Do(ctx, apiclient.Request{URL: r.itemPath(id), Method: http.MethodGet})
	if !res.Success {
		return nil, res
	}

	var item Item
	var err error
	if r.ItemField == "" {
		if body := bytes.TrimSpace(res.Raw); len(body) > 0 && string(body) != "null" {
			err = res.Decode(&item)
		}
	} else {
		_, err = res.DecodeField(r.ItemField, &item)
	}
	if err != nil {
		return nil, invalid(res, err)
	}
	if len(item) == 0 {
		res.Success = false
		res.Kind = apiclient.KindNotFound
		res.Message = fmt.Sprintf("%s %s not found", r.Name, id)
		return nil, res
	}
	return item, res
}

// Create posts a new record built from payload.
func (s *Service) Create(ctx context.Context, r Resource, payload any) apiclient.Response {
	return s.write(ctx, r, http.MethodPost, r.createPath(), payload)
}

// Update replaces or patches record id with payload.
func (s *Service) Update(ctx context.Context, r Resource, id string, payload any) apiclient.Response {
	if strings.TrimSpace(id) == "" {
		return apiclient.Failure(apiclient.KindValidation, "id is required")
	}
	return s.write(ctx, r, r.updateMethod(), r.updatePath(id), payload)
}

// Delete removes record id.
func (s *Service) Delete(ctx context.Context, r Resource, id string) apiclient.Response {
	if r.ReadOnly {
		return apiclient.Failure(apiclient.KindValidation, fmt.Sprintf("%s records cannot be deleted", r.Name))
	}
	if strings.TrimSpace(id) == "" {
		return apiclient.Failure(apiclient.KindValidation, "id is required")
	}
	token, res, ok := s.requireToken()
	if !ok {
		return res
	}

	res = s.api.Do(ctx, apiclient.Request{URL: r.deletePath(id), Method: http.MethodDelete, Token: token})
	s.logOutcome(r, "delete", id, res)
	return res
}

func (s *Service) write(ctx context.Context, r Resource, method, path string, payload any) apiclient.Response {
	if r.ReadOnly {
		return apiclient.Failure(apiclient.KindValidation, fmt.Sprintf("%s records cannot be modified", r.Name))
	}
	if res, ok := s.check(payload); !ok {
		return res
	}
	token, res, ok := s.requireToken()
	if !ok {
		return res
	}

	req := apiclient.Request{URL: path, Method: method, Data: payload, Token: token}
	if r.Multipart {
		enc, ok := payload.(FormEncoder)
		if !ok {
			return apiclient.Failure(apiclient.KindInvalid, fmt.Sprintf("%s payload must be sent as a form", r.Name))
		}
		form, err := enc.Form()
		if err != nil {
			return apiclient.Failure(apiclient.KindInvalid, err.Error())
		}
		req.Data = form
		req.ContentType = apiclient.ContentTypeMultipart
	}

	res = s.api.Do(ctx, req)
	s.logOutcome(r, strings.ToLower(method), path, res)
	return res
}

// check runs struct validation and converts failures into an envelope.
func (s *Service) check(payload any) (apiclient.Response, bool) {
	if payload == nil {
		return apiclient.Failure(apiclient.KindValidation, "payload is required"), false
	}
	v := reflect.ValueOf(payload)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return apiclient.Failure(apiclient.KindValidation, "payload is required"), false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return apiclient.Response{}, true
	}

	if err := s.validate.Struct(payload); err != nil {
		return apiclient.Failure(apiclient.KindValidation, validationMessage(err)), false
	}
	return apiclient.Response{}, true
}

func (s *Service) requireToken() (string, apiclient.Response, bool) {
	token := ""
	if s.tokens != nil {
		token = s.tokens.Token()
	}
	if token == "" {
		return "", apiclient.Failure(apiclient.KindUnauthorized, msgNotAuthenticated), false
	}
	return token, apiclient.Response{}, true
}

func (s *Service) logOutcome(r Resource, op, target string, res apiclient.Response) {
	evt := s.logger.Info()
	if !res.Success {
		evt = s.logger.Warn().Str("kind", string(res.Kind)).Str("message", res.Message)
	}
	evt.Str("resource", r.Name).
		Str("op", op).
		Str("target", target).
		Int("status", res.Status).
		Msg("Content write")
}

// validationMessage turns validator errors into "title is required; ...".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldPath(fe.Namespace())
		switch fe.Tag() {
		case "required", "min":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// fieldPath drops the struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func invalid(res apiclient.Response, err error) apiclient.Response {
	res.Success = false
	res.Kind = apiclient.KindInvalid
	res.Message = err.Error()
	return res
}
