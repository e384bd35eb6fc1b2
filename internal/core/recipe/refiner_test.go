package recipe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefineRewritesQuery(t *testing.T) {
	chat := &fakeChat{reply: "清淡 番茄 汤"}
	refiner := NewQueryRefiner(chat)

	got := refiner.Refine(context.Background(), "番茄", "不要辣，想喝汤")

	assert.Equal(t, "清淡 番茄 汤", got)
}

func TestRefineEmptyRefinementIsPassthrough(t *testing.T) {
	chat := &fakeChat{reply: "不该被调用"}
	refiner := NewQueryRefiner(chat)

	got := refiner.Refine(context.Background(), "番茄", "")

	assert.Equal(t, "番茄", got)
	assert.Zero(t, chat.calls)
}

func TestRefineNilChatIsPassthrough(t *testing.T) {
	refiner := NewQueryRefiner(nil)

	got := refiner.Refine(context.Background(), "番茄", "不要辣")

	assert.Equal(t, "番茄", got)
}

func TestRefineBackendErrorIsPassthrough(t *testing.T) {
	chat := &fakeChat{err: errors.New("429")}
	refiner := NewQueryRefiner(chat)

	got := refiner.Refine(context.Background(), "番茄", "不要辣")

	assert.Equal(t, "番茄", got)
}

func TestRefineEmptyReplyIsPassthrough(t *testing.T) {
	chat := &fakeChat{reply: ""}
	refiner := NewQueryRefiner(chat)

	got := refiner.Refine(context.Background(), "番茄", "不要辣")

	assert.Equal(t, "番茄", got)
}
