package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAnchors_CollectsHrefTextAndParent(t *testing.T) {
	html := `
		<html>
			<body>
				<nav><a href="/">Home</a></nav>
				<div class="card">
					<a href="/products/naruto-pop?variant=1">Naruto Exclusive Pop</a>
					<span class="price">£14.99</span>
				</div>
				<a href="">Empty</a>
				<a>No href</a>
			</body>
		</html>
	`

	anchors, err := ExtractAnchors(html)
	require.NoError(t, err)
	require.Len(t, anchors, 2)

	assert.Equal(t, "/", anchors[0].Href)
	assert.Equal(t, "/products/naruto-pop?variant=1", anchors[1].Href)
	assert.Equal(t, "Naruto Exclusive Pop", anchors[1].Text)
	assert.Contains(t, anchors[1].NearbyText, "£14.99")
}

func TestExtractAnchors_EmptyDocument(t *testing.T) {
	anchors, err := ExtractAnchors("")
	require.NoError(t, err)
	assert.Empty(t, anchors)
}
