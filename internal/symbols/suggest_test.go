package symbols

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest(t *testing.T) {
	assert.Equal(t, []string{"VCB", "VCI", "VCS"}, Suggest("vc", 0))
	assert.Equal(t, []string{"VCB"}, Suggest("VC", 1))
	assert.Empty(t, Suggest("V", 5))
	assert.Empty(t, Suggest("QQ", 5))
}

func TestValidate(t *testing.T) {
	e := NewExtractor(nil, nil, zerolog.Nop())
	ctx := context.Background()

	assert.Equal(t, "Empty symbol", e.Validate(ctx, " ").Reason)

	v := e.Validate(ctx, "fpt")
	assert.True(t, v.Valid)
	assert.Equal(t, "Known symbol", v.Reason)
	assert.Equal(t, "Cached as valid", e.Validate(ctx, "FPT").Reason)

	v = e.Validate(ctx, "HTML")
	assert.False(t, v.Valid)
	assert.Equal(t, "Invalid format", v.Reason)
	assert.Equal(t, "Cached as invalid", e.Validate(ctx, "HTML").Reason)

	v = e.Validate(ctx, "QWER")
	assert.True(t, v.Valid)
	assert.Equal(t, "low", v.Confidence)
}

func TestIsStockRelated(t *testing.T) {
	assert.True(t, IsStockRelated("P/E của ngân hàng"))
	assert.True(t, IsStockRelated("hpg thế nào"))
	assert.False(t, IsStockRelated("hôm nay trời đẹp không"))
}

func TestFormatSuggestions(t *testing.T) {
	out := FormatSuggestions([]string{"VCX"}, SuggestionsFor([]string{"VCX"}))
	assert.Contains(t, out, "Tôi không tìm thấy mã cổ phiếu hợp lệ")
	assert.Contains(t, out, "**Thay vì `VCX`, bạn có thể muốn hỏi về:**")
	assert.Contains(t, out, "• `VCB`")
	assert.Contains(t, out, "💡 **Gợi ý**")
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	c := NewRedisCache(client, "stockchat:test:"+t.Name(), zerolog.Nop())
	t.Cleanup(func() { _ = c.Clear(ctx) })

	c.MarkInvalid(ctx, "ABCD")
	assert.True(t, c.IsInvalid(ctx, "ABCD"))
	c.MarkValid(ctx, "ABCD")
	assert.True(t, c.IsValid(ctx, "ABCD"))
	assert.False(t, c.IsInvalid(ctx, "ABCD"))

	require.NoError(t, c.Clear(ctx))
	assert.False(t, c.IsValid(ctx, "ABCD"))
}
