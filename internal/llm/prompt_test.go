package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRestatePrompt(t *testing.T) {
	structured := "SẢN PHẨM: iPhone 15\nGIÁ: 20 triệu\n"

	prompt := RestatePrompt(structured)

	assert.Contains(t, prompt, "===== DỮ LIỆU TỪ DATABASE =====")
	assert.Contains(t, prompt, structured)
	assert.Contains(t, prompt, "===== YÊU CẦU =====")
	assert.Contains(t, prompt, "KHÔNG TỰ BỊA")
}

func TestOpenDomainPrompt(t *testing.T) {
	prompt := OpenDomainPrompt("hôm nay trời đẹp nhỉ")

	assert.Contains(t, prompt, `"hôm nay trời đẹp nhỉ"`)
	assert.Contains(t, prompt, "trợ lý mua sắm")
}

func TestUpstreamError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &UpstreamError{Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "upstream failure")

	var upstream *UpstreamError
	assert.ErrorAs(t, error(err), &upstream)
}
