package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Auth        *AuthHandler
	Users       *UserHandler
	Rehearsals  *RehearsalHandler
	Responses   *ResponseHandler
	Bands       *BandHandler
	Invitations *InvitationHandler
	Digest      *DigestHandler
	// Authenticate wraps every route except login and registration.
	Authenticate func(http.Handler) http.Handler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	secured := func(h http.HandlerFunc) http.Handler {
		if cfg.Authenticate != nil {
			return cfg.Authenticate(h)
		}
		return h
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Login(w, r)
		})
	}

	if cfg.Invitations != nil {
		mux.HandleFunc("/api/auth/register/", func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.URL.Path, "/api/auth/register/")
			if token == "" || strings.Contains(token, "/") {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Invitations.Register(w, r, token)
		})

		mux.Handle("/api/invitations", secured(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Invitations.List(w, r)
			case http.MethodPost:
				cfg.Invitations.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/api/invitations/", secured(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/invitations/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithInvitationID(r.Context(), id))
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Invitations.Delete(w, r)
		}))
	}

	if cfg.Users != nil {
		mux.Handle("/api/users", secured(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Users.List(w, r)
			case http.MethodPost:
				cfg.Users.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/api/users/", secured(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/users/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithUserID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				cfg.Users.Get(w, r)
			case http.MethodPut:
				cfg.Users.Update(w, r)
			case http.MethodDelete:
				cfg.Users.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Rehearsals != nil {
		mux.Handle("/api/rehearsals", secured(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Rehearsals.List(w, r)
			case http.MethodPost:
				cfg.Rehearsals.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/api/rehearsals/", secured(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/rehearsals/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			switch id {
			case "bulk":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Rehearsals.BulkCreate(w, r)
			case "manage":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Rehearsals.Manage(w, r)
			default:
				r = r.WithContext(ContextWithRehearsalID(r.Context(), id))
				switch r.Method {
				case http.MethodGet:
					cfg.Rehearsals.Get(w, r)
				case http.MethodPut:
					cfg.Rehearsals.Update(w, r)
				case http.MethodDelete:
					cfg.Rehearsals.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			}
		}))
	}

	if cfg.Responses != nil {
		mux.Handle("/api/responses", secured(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Responses.List(w, r)
			case http.MethodPost:
				cfg.Responses.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/api/responses/", secured(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/responses/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResponseID(r.Context(), id))
			switch r.Method {
			case http.MethodGet:
				cfg.Responses.Get(w, r)
			case http.MethodPut:
				cfg.Responses.Update(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut)
			}
		}))
	}

	if cfg.Bands != nil {
		mux.Handle("/api/bands", secured(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Bands.List(w, r)
			case http.MethodPost:
				cfg.Bands.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.Handle("/api/bands/", secured(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/api/bands/")
			id, tail, _ := strings.Cut(rest, "/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithBandID(r.Context(), id))
			switch tail {
			case "":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Bands.Get(w, r)
			case "members":
				switch r.Method {
				case http.MethodGet:
					cfg.Bands.ListMembers(w, r)
				case http.MethodPost:
					cfg.Bands.AddMember(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			default:
				http.NotFound(w, r)
			}
		}))
	}

	if cfg.Digest != nil {
		mux.Handle("/api/email/send", secured(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Digest.Send(w, r)
		}))
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
