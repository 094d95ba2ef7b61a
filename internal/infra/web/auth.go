package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fitstudio-backend/internal/domain"
	"fitstudio-backend/internal/infra/logging"
	red "fitstudio-backend/internal/infra/redis"
)

const sessionCookie = "fitstudio_session"

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

func (s *Server) mintSession(email, name string) (string, error) {
	claims := sessionClaims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.sessionTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *Server) parseSession(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrPermissionDenied
	}
	return claims, nil
}

// sessionMiddleware accepts a bearer token or the session cookie.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if h := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(h), "bearer ") {
			token = h[len("bearer "):]
		} else if c, err := r.Cookie(sessionCookie); err == nil {
			token = c.Value
		}
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "não autenticado"})
			return
		}
		claims, err := s.parseSession(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "sessão inválida"})
			return
		}
		ctx := logging.WithEmail(r.Context(), claims.Email)
		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, ctxSession, claims)))
	})
}

type ctxKey string

const ctxSession ctxKey = "session"

var loginPage = template.Must(template.New("login").Parse(`<!doctype html>
<html lang="pt-BR">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>FitStudio — Login</title>
<style>
body{font-family:system-ui,Arial,sans-serif;margin:0;display:flex;min-height:100vh;align-items:center;justify-content:center;background:#f4f4f5}
.card{width:340px;border:1px solid #ddd;border-radius:12px;padding:24px;background:#fff}
h1{font-size:20px;margin:0 0 16px}
label{display:block;font-size:13px;margin:12px 0 4px;color:#444}
input{width:100%;padding:8px;border:1px solid #bbb;border-radius:6px;box-sizing:border-box}
button{margin-top:16px;width:100%;padding:10px;border-radius:8px;border:0;background:#0f766e;color:#fff;cursor:pointer}
.err{color:#b00020;font-size:13px;margin-top:12px}
</style>
</head>
<body>
<div class="card">
  <h1>FitStudio</h1>
  <form method="post" action="/login">
    <label for="email">E-mail</label>
    <input id="email" name="email" type="email" required />
    <label for="password">Senha</label>
    <input id="password" name="password" type="password" required />
    <button type="submit">Entrar</button>
  </form>
  {{if .Error}}<div class="err">{{.Error}}</div>{{end}}
</div>
</body>
</html>`))

func (s *Server) renderLogin(w http.ResponseWriter, status int, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = loginPage.Execute(w, struct{ Error string }{Error: errMsg})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.renderLogin(w, http.StatusOK, "")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderLogin(w, http.StatusBadRequest, "requisição inválida")
		return
	}
	email := strings.ToLower(strings.TrimSpace(r.PostFormValue("email")))
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		s.renderLogin(w, http.StatusBadRequest, "informe e-mail e senha")
		return
	}

	if s.limiter != nil {
		ok, err := s.limiter.Allow(r.Context(), red.LoginKey(email), 10, time.Minute)
		if err != nil {
			s.log.Warn().Err(err).Msg("login: rate limiter unavailable, allowing")
		} else if !ok {
			s.renderLogin(w, http.StatusTooManyRequests, "muitas tentativas, aguarde um minuto")
			return
		}
	}

	acc, err := s.identity.SignIn(r.Context(), email, password)
	if err != nil {
		s.renderLogin(w, http.StatusUnauthorized, "credenciais inválidas")
		return
	}
	token, err := s.mintSession(acc.Email, acc.DisplayName)
	if err != nil {
		s.renderLogin(w, http.StatusInternalServerError, "erro interno")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.sessionTTL.Seconds()),
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
