package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"DomainCheck/domain"
	"DomainCheck/internal/app"
	"DomainCheck/tools"
)

func (s *Server) handleListDomains(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.List(r.Context())
	if err != nil {
		log.Printf("[http] list_failed err=%v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleUpsertDomain(w http.ResponseWriter, r *http.Request) {
	var sub domain.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "无效的 JSON 格式。")
		return
	}
	if sub.Domain == "" {
		writeError(w, http.StatusBadRequest, "缺少 domain 字段。")
		return
	}

	record, err := s.store.Upsert(r.Context(), sub)
	if err != nil {
		var badDomain *domain.BadDomainError
		var validation *domain.ValidationError
		var conflict *domain.ConflictError
		switch {
		case errors.As(err, &badDomain):
			writeError(w, http.StatusBadRequest, badDomain.Error())
		case errors.As(err, &validation):
			writeError(w, http.StatusUnprocessableEntity, validation.Error())
		case errors.As(err, &conflict):
			writeError(w, http.StatusConflict, "域名已存在！")
		default:
			log.Printf("[http] upsert_failed domain=%s err=%v", sub.Domain, err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"domain":  record.Domain,
	})
}

func (s *Server) handleReplaceDomains(w http.ResponseWriter, r *http.Request) {
	var records []domain.Record
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		writeError(w, http.StatusBadRequest, "无效的JSON格式或不是数组")
		return
	}
	// JSON null 也能解码成 nil 切片，不能当成空列表整表清空
	if records == nil {
		writeError(w, http.StatusBadRequest, "无效的JSON格式或不是数组")
		return
	}
	count, err := s.store.ReplaceAll(r.Context(), records)
	if err != nil {
		log.Printf("[http] replace_failed err=%v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   count,
	})
}

// handleDeleteDomains 同时接受 ["a.com","b.com"] 和 {"domain":"a.com"} 两种请求体。
func (s *Server) handleDeleteDomains(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "读取请求体失败。")
		return
	}

	var targets []string
	var asList []string
	if err := json.Unmarshal(body, &asList); err == nil {
		for _, d := range asList {
			if d != "" {
				targets = append(targets, d)
			}
		}
	} else {
		var single struct {
			Domain string `json:"domain"`
		}
		if err := json.Unmarshal(body, &single); err != nil || single.Domain == "" {
			writeError(w, http.StatusBadRequest, `无效的删除请求格式。期望 {"domain": "..."} 或 ["d1", "d2"] 数组。`)
			return
		}
		targets = []string{single.Domain}
	}
	if len(targets) == 0 {
		writeError(w, http.StatusBadRequest, "未提供有效的域名进行删除。")
		return
	}

	deleted, err := s.store.DeleteMany(r.Context(), targets)
	if err != nil {
		log.Printf("[http] delete_failed err=%v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if deleted == 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"message": "未找到任何要删除的域名。",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      fmt.Sprintf("成功删除 %d 个域名。", deleted),
		"deletedCount": deleted,
	})
}

// handleWhois 是带 API Key 的直查通道，只开放一级域名。
func (s *Server) handleWhois(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Whois.APIKey == "" {
		writeError(w, http.StatusServiceUnavailable, "未配置 API Key")
		return
	}
	key := r.Header.Get("X-API-KEY")
	if key == "" {
		writeError(w, http.StatusUnauthorized, "需要提供有效的 API Key")
		return
	}
	if key != s.cfg.Whois.APIKey {
		writeError(w, http.StatusForbidden, "无效的 API Key")
		return
	}

	domainName := chi.URLParam(r, "domain")
	if !tools.ValidDomainName(domainName) {
		writeError(w, http.StatusBadRequest, "域名格式无效")
		return
	}
	if !tools.IsPrimaryDomain(domainName) {
		writeError(w, http.StatusBadRequest, "仅支持查询一级域名。")
		return
	}

	result, status, err := s.cache.Lookup(r.Context(), domainName)
	if err != nil {
		log.Printf("[http] whois_failed domain=%s err=%v", domainName, err)
		writeError(w, http.StatusBadGateway, "WHOIS 查询服务出错。")
		return
	}
	if !result.Complete() {
		writeError(w, http.StatusNotFound, "无法查询到该域名的 WHOIS 信息或信息不完整。")
		return
	}

	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.cfg.CacheMaxAge().Seconds())))
	w.Header().Set("X-Cache-Status", string(status))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    result,
	})
}

// handleCron 手动触发一轮到期检查，响应与定时触发共用同一条路径。
func (s *Server) handleCron(w http.ResponseWriter, r *http.Request) {
	expiring, err := s.checker.RunCheck(r.Context())
	if err != nil {
		log.Printf("[http] cron_failed err=%v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "cron 任务执行失败",
		})
		return
	}

	message := "没有即将到期的域名。"
	if len(expiring) > 0 {
		message = fmt.Sprintf("已找到 %d 个即将到期的域名，Telegram通知已尝试发送。", len(expiring))
	}
	domains := expiring
	if domains == nil {
		domains = []app.Expiring{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       message,
		"expiringCount": len(expiring),
		"domains":       domains,
	})
}

// handleConfig 只暴露展示用配置，密码、机器人 Token 和 API Key 绝不下发。
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=86400")
	writeJSON(w, http.StatusOK, map[string]any{
		"siteName":  s.cfg.Site.Name,
		"siteIcon":  s.cfg.Site.Icon,
		"bgimgURL":  s.cfg.Site.BgImg,
		"githubURL": s.cfg.Site.GithubURL,
		"blogURL":   s.cfg.Site.BlogURL,
		"blogName":  s.cfg.Site.BlogName,
		"days":      s.cfg.AlertDays,
	})
}
