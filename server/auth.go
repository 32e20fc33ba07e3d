package server

import (
	"net/http"
	"time"
)

const authCookie = "auth"

// requireAuth 是仪表盘和记录接口的 Cookie 门：
// 没设置密码就完全放行；校验失败一律 302 到登录页。
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Password == "" {
			next.ServeHTTP(w, r)
			return
		}
		cookie, err := r.Cookie(authCookie)
		if err != nil || cookie.Value != s.cfg.Password {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.renderLogin(w, false)
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	password := r.PostFormValue("password")
	if password != s.cfg.Password || s.cfg.Password == "" {
		s.renderLogin(w, true)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    password,
		Expires:  time.Now().Add(7 * 24 * time.Hour),
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}
