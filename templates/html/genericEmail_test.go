package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderGenericEmailEscapes(t *testing.T) {
	out := RenderGenericEmail("Claim <Approved>", "line one\n<script>alert(1)</script>")
	assert.Contains(t, out, "Claim &lt;Approved&gt;")
	assert.Contains(t, out, "line one<br>&lt;script&gt;")
	assert.False(t, strings.Contains(out, "<script>"))
}
