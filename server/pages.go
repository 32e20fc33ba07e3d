package server

import (
	"html/template"
	"log"
	"net/http"
	"strconv"
	"time"

	"DomainCheck/domain"
	"DomainCheck/internal/app"
)

var loginTmpl = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>登录 - {{.SiteName}}</title>
<style>
body { font-family: Arial, sans-serif; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0; background: #f4f4f4; }
.login { background: #fff; padding: 25px; border-radius: 8px; box-shadow: 0 4px 15px rgba(0,0,0,.15); width: 360px; text-align: center; }
h1 { color: #186db3; font-size: 1.6rem; }
input[type=password] { width: 100%; padding: 12px; margin-bottom: 16px; border: 1px solid #ddd; border-radius: 8px; box-sizing: border-box; }
button { width: 100%; padding: 12px; background: #186db3; color: #fff; border: 0; border-radius: 8px; cursor: pointer; font-weight: bold; }
.error { color: #e74c3c; margin-top: 12px; }
</style>
</head>
<body>
<div class="login">
<h1>{{.SiteName}}</h1>
<form action="/login" method="POST">
<input type="password" name="password" placeholder="访问密码" required autocomplete="current-password">
<button type="submit">登录系统</button>
{{if .ShowError}}<div class="error">密码错误，请重试</div>{{end}}
</form>
</div>
</body>
</html>`))

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.SiteName}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 0; background: #f4f4f4; color: #333; }
.container { width: 95%; max-width: 1200px; margin: 20px auto; background: #fff; border-radius: 5px; box-shadow: 0 2px 5px rgba(0,0,0,.1); overflow: hidden; }
h1 { background: #3498db; color: #fff; padding: 20px; margin: 0; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 12px; text-align: left; border-bottom: 1px solid #ddd; white-space: nowrap; }
th { background: #f2f2f2; }
.dot { display: inline-block; width: 10px; height: 10px; border-radius: 50%; }
.bar { width: 100%; min-width: 100px; background: #e0e0e0; border-radius: 4px; overflow: hidden; }
.bar div { height: 16px; background: #3498db; }
</style>
</head>
<body>
<div class="container">
<h1>{{.SiteName}}</h1>
<table>
<thead><tr><th>状态</th><th>域名</th><th>注册商</th><th>注册时间</th><th>到期时间</th><th>剩余天数</th><th>使用进度</th></tr></thead>
<tbody>
{{range .Rows}}
<tr>
<td><span class="dot" style="background-color: {{.Color}};" title="{{.StatusText}}"></span></td>
<td>{{.Domain}}</td>
<td><a href="{{.RegistrarURL}}" target="_blank">{{.Registrar}}</a></td>
<td>{{.RegistrationDate}}</td>
<td>{{.ExpirationDate}}</td>
<td>{{.Remaining}}</td>
<td><div class="bar"><div style="width: {{.Progress}}%;"></div></div></td>
</tr>
{{end}}
</tbody>
</table>
</div>
</body>
</html>`))

type dashboardRow struct {
	Domain           string
	Registrar        string
	RegistrarURL     string
	RegistrationDate string
	ExpirationDate   string
	Remaining        string
	Progress         int
	Color            string
	StatusText       string
}

func (s *Server) renderLogin(w http.ResponseWriter, showError bool) {
	w.Header().Set("Content-Type", "text/html;charset=UTF-8")
	_ = loginTmpl.Execute(w, map[string]any{
		"SiteName":  s.cfg.Site.Name,
		"ShowError": showError,
	})
}

// handleDashboard 服务端渲染状态总览，前端脚本和样式细节不在本层关心。
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		log.Printf("[http] dashboard_failed err=%v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	now := time.Now()
	rows := make([]dashboardRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, buildRow(rec, now, s.cfg.AlertDays))
	}

	w.Header().Set("Content-Type", "text/html;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	_ = dashboardTmpl.Execute(w, map[string]any{
		"SiteName": s.cfg.Site.Name,
		"Rows":     rows,
	})
}

func buildRow(rec domain.Record, now time.Time, alertDays int) dashboardRow {
	ev := app.Evaluate(rec.RegistrationDate, rec.ExpirationDate, now, alertDays)

	row := dashboardRow{
		Domain:           rec.Domain,
		Registrar:        rec.Registrar,
		RegistrarURL:     rec.RegistrarURL,
		RegistrationDate: rec.RegistrationDate,
		ExpirationDate:   rec.ExpirationDate,
	}
	switch ev.Status {
	case app.StatusExpired:
		row.Color, row.StatusText, row.Remaining = "#e74c3c", "已过期", "已过期"
	case app.StatusExpiringSoon:
		row.Color, row.StatusText = "#f39c12", "即将到期"
	case app.StatusNormal:
		row.Color, row.StatusText = "#2ecc71", "正常"
	default:
		row.Color, row.StatusText, row.Remaining = "#95a5a6", "数据缺失", "-"
	}
	if ev.DaysKnown && row.Remaining == "" {
		row.Remaining = strconv.Itoa(ev.DaysRemaining) + " 天"
	}
	if ev.ProgressKnown {
		row.Progress = int(ev.ProgressPercent)
	}
	return row
}
