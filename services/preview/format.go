package preview

import (
	"fmt"
	"log"
	"strings"

	"magnetview/models"
	"magnetview/utils"
)

// fileTypeLabels maps the upstream content type to its display label.
// Unknown types fall back to the catch-all.
var fileTypeLabels = map[string]string{
	"folder":   "📁 文件夹",
	"video":    "🎥 视频",
	"image":    "🖼️ 图片",
	"text":     "📄 文本",
	"audio":    "🎵 音频",
	"archive":  "📦 压缩包",
	"document": "📑 文档",
	"unknown":  "❓ 其他",
}

const unknownTypeLabel = "❓ 其他"

// TypeLabel returns the display label for an upstream content type.
func TypeLabel(contentType string) string {
	if label, ok := fileTypeLabels[strings.ToLower(strings.TrimSpace(contentType))]; ok {
		return label
	}
	return unknownTypeLabel
}

// FormatResult renders the five-line preview block for a validated result.
func FormatResult(r *models.ResolutionResult) string {
	name := r.Name
	if name == "" {
		name = "未知"
	}
	lines := []string{
		"🔍 解析结果：",
		"📝 名称：" + name,
		"📦 类型：" + TypeLabel(r.Type),
		"📏 大小：" + FormatSize(r.Size),
		fmt.Sprintf("📚 包含文件：%d个", r.Count),
	}
	return strings.Join(lines, "\n")
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count in binary (1024-based) units with two
// decimal places. Zero or negative sizes render as "0B".
func FormatSize(sizeBytes int64) string {
	if sizeBytes <= 0 {
		return "0B"
	}
	size := float64(sizeBytes)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", size, sizeUnits[unit])
}

// ScreenshotURLs returns at most max screenshot URLs in their original
// order. Empty entries are dropped before the cap is applied so they
// never consume a slot. When rewriteBase is set, each URL's origin is
// moved onto it; URLs that fail to rewrite are delivered unmodified.
func ScreenshotURLs(r *models.ResolutionResult, max int, rewriteBase string) []string {
	if r == nil || max <= 0 {
		return nil
	}
	urls := make([]string, 0, max)
	for _, shot := range r.Screenshots {
		if shot.Screenshot == "" {
			continue
		}
		u := shot.Screenshot
		if rewriteBase != "" {
			rewritten, err := utils.RewriteOrigin(u, rewriteBase)
			if err != nil {
				log.Printf("[preview] keeping original screenshot URL: %v", err)
			} else {
				u = rewritten
			}
		}
		urls = append(urls, u)
		if len(urls) == max {
			break
		}
	}
	return urls
}
