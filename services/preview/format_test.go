package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"magnetview/models"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0B"},
		{-5, "0B"},
		{1, "1.00 B"},
		{512, "512.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1073741824, "1.00 GB"},
		{1099511627776, "1.00 TB"},
		// TB is the largest unit; anything bigger stays in TB.
		{1125899906842624, "1024.00 TB"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, FormatSize(tc.bytes), "FormatSize(%d)", tc.bytes)
	}
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "🎥 视频", TypeLabel("video"))
	assert.Equal(t, "🎥 视频", TypeLabel("VIDEO"))
	assert.Equal(t, "📁 文件夹", TypeLabel("folder"))
	assert.Equal(t, "❓ 其他", TypeLabel("unknown"))
	assert.Equal(t, "❓ 其他", TypeLabel("weird-new-type"))
	assert.Equal(t, "❓ 其他", TypeLabel(""))
}

func TestFormatResult(t *testing.T) {
	result := &models.ResolutionResult{
		Type:     "video",
		FileType: "video",
		Name:     "Sample",
		Size:     1073741824,
		Count:    3,
	}

	block := FormatResult(result)
	lines := strings.Split(block, "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, "🔍 解析结果：", lines[0])
	assert.Contains(t, lines[1], "Sample")
	assert.Contains(t, lines[2], "🎥 视频")
	assert.Contains(t, lines[3], "1.00 GB")
	assert.Contains(t, lines[4], "3个")
}

func TestFormatResultEmptyName(t *testing.T) {
	block := FormatResult(&models.ResolutionResult{Type: "video"})
	assert.Contains(t, block, "📝 名称：未知")
	assert.Contains(t, block, "📏 大小：0B")
}

func screenshots(urls ...string) []models.Screenshot {
	shots := make([]models.Screenshot, len(urls))
	for i, u := range urls {
		shots[i] = models.Screenshot{Screenshot: u}
	}
	return shots
}

func TestScreenshotURLsTruncation(t *testing.T) {
	shots := make([]models.Screenshot, 12)
	for i := range shots {
		shots[i] = models.Screenshot{Screenshot: "https://whatslink.info/shot" + string(rune('a'+i)) + ".jpg"}
	}
	result := &models.ResolutionResult{Screenshots: shots}

	urls := ScreenshotURLs(result, 5, "")
	assert.Len(t, urls, 5)
	for i, u := range urls {
		assert.Equal(t, shots[i].Screenshot, u, "order must be preserved")
	}
}

func TestScreenshotURLsSkipsEmptyWithoutConsumingCap(t *testing.T) {
	result := &models.ResolutionResult{
		Screenshots: screenshots("https://h/1.jpg", "", "https://h/2.jpg", "", "https://h/3.jpg", "https://h/4.jpg"),
	}

	// Empty entries must not shift valid ones out of the cap.
	urls := ScreenshotURLs(result, 3, "")
	assert.Equal(t, []string{"https://h/1.jpg", "https://h/2.jpg", "https://h/3.jpg"}, urls)
}

func TestScreenshotURLsRewrite(t *testing.T) {
	result := &models.ResolutionResult{
		Screenshots: screenshots("https://whatslink.info/x.jpg"),
	}

	urls := ScreenshotURLs(result, 5, "https://mirror.example")
	assert.Equal(t, []string{"https://mirror.example/x.jpg"}, urls)
}

func TestScreenshotURLsDefensive(t *testing.T) {
	assert.Nil(t, ScreenshotURLs(nil, 5, ""))
	assert.Nil(t, ScreenshotURLs(&models.ResolutionResult{}, 5, ""))
	assert.Nil(t, ScreenshotURLs(&models.ResolutionResult{Screenshots: screenshots("https://h/1.jpg")}, 0, ""))
}
