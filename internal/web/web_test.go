package web

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/batalla-naval/internal/engine"
	"github.com/DoyleJ11/batalla-naval/internal/lobby"
	"github.com/DoyleJ11/batalla-naval/internal/types"
)

func TestPage_Render(t *testing.T) {
	s := engine.NewEmptyState(engine.DefaultRoster)
	_, s, err := engine.Apply(s, engine.Command{Type: engine.CmdActivateCell, Team: "PINBALL", Cell: 5})
	require.NoError(t, err)
	_, s, err = engine.Apply(s, engine.Command{Type: engine.CmdIncrement, Team: "PINBALL"})
	require.NoError(t, err)

	page, err := NewPage("/batallaNaval")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf, "NAVAL1", types.BoardView(lobby.Snapshot{Version: 2, State: s})))
	html := buf.String()

	for _, team := range engine.DefaultRoster {
		assert.Contains(t, html, "<th>"+string(team)+"</th>")
	}
	assert.Contains(t, html, `data-code="NAVAL1"`)
	assert.Contains(t, html, `src="/batallaNaval/assets/wave.svg"`)
	assert.Equal(t, 1, strings.Count(html, `<img src="/batallaNaval/assets/`), "only the activated cell has an icon")
	assert.Equal(t, 4*engine.GridSize, strings.Count(html, `class="cell"`))
	assert.Contains(t, html, "Reiniciar Todo")
}

func TestAssets_ServesIcons(t *testing.T) {
	srv := httptest.NewServer(Assets())
	defer srv.Close()

	for _, state := range []engine.CellState{engine.CellWave, engine.CellTorpedo, engine.CellBomb} {
		resp, err := http.Get(srv.URL + "/" + state.Icon())
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, state.Icon())
	}
}
