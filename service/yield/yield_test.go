package yield

import (
	"context"
	"errors"
	"testing"

	"stablevault/core"
	"stablevault/pkg/wad"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapped(t *testing.T) {
	ctx := context.Background()
	w := NewWrapped(wad.Percent(115))

	u, err := w.GetUnderlyingAmount(ctx, wad.Units(10, 18))
	require.NoError(t, err)
	assert.Equal(t, wad.Units(115, 17).Dec(), u.Dec())

	back, err := w.GetWrapperAmount(ctx, u)
	require.NoError(t, err)
	assert.Equal(t, wad.Units(10, 18).Dec(), back.Dec())
}

func TestRebasing(t *testing.T) {
	ctx := context.Background()
	r := NewRebasing(wad.Units(0, 18), wad.Units(0, 18))

	rate, err := r.GetExchangeRate(ctx)
	require.NoError(t, err)
	assert.True(t, rate.Eq(wad.WAD))

	r = NewRebasing(wad.Units(1050, 18), wad.Units(1000, 18))
	rate, err = r.GetExchangeRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, wad.Percent(105).Dec(), rate.Dec())

	r.Rebase(wad.Units(1100, 18))
	rate, _ = r.GetExchangeRate(ctx)
	assert.Equal(t, wad.Percent(110).Dec(), rate.Dec())
}

type recorder struct {
	reports int
	err     error
}

func (r *recorder) ReportSlashing(_ context.Context, _ core.Asset, _, _ *uint256.Int) error {
	r.reports++
	return r.err
}

func TestGuardReportsSlashing(t *testing.T) {
	ctx := context.Background()
	mock := NewMock()
	rep := &recorder{}
	g := Guard(mock, "wstETH", nil, rep)

	_, err := g.GetExchangeRate(ctx)
	require.NoError(t, err)

	// 4% drop stays under the threshold
	mock.Rate = wad.Percent(96)
	rate, err := g.GetExchangeRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, wad.Percent(96).Dec(), rate.Dec())
	assert.Equal(t, 0, rep.reports)

	mock.Rate = wad.Percent(90)
	rate, err = g.GetExchangeRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, wad.Percent(90).Dec(), rate.Dec())
	assert.Equal(t, 1, rep.reports)
}

func TestGuardRefusesWhenReportFails(t *testing.T) {
	ctx := context.Background()
	mock := NewMock()
	rep := &recorder{err: errors.New("pause unreachable")}
	g := Guard(mock, "wstETH", nil, rep)

	_, err := g.GetExchangeRate(ctx)
	require.NoError(t, err)

	mock.Rate = wad.Percent(50)
	_, err = g.GetExchangeRate(ctx)
	assert.ErrorIs(t, err, core.ErrSlashingDetected)
	assert.True(t, core.IsRetryable(err))
	assert.True(t, g.LastRate().Eq(wad.WAD))

	_, err = g.GetUnderlyingAmount(ctx, wad.WAD)
	assert.ErrorIs(t, err, core.ErrSlashingDetected)
}

func TestGuardCheckpoint(t *testing.T) {
	ctx := context.Background()
	mock := NewMock()
	g := Guard(mock, "wstETH", nil, &recorder{})

	restore := g.Checkpoint()
	_, _ = g.GetExchangeRate(ctx)
	assert.NotNil(t, g.LastRate())
	restore()
	assert.Nil(t, g.LastRate())
}
