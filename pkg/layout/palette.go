package layout

// communityPalette is the fixed palette cycled across communities. Nine
// hues chosen for contrast on both light and dark backgrounds.
var communityPalette = [...]string{
	"#4E79A7", // blue
	"#F28E2B", // orange
	"#59A14F", // green
	"#E15759", // red
	"#B07AA1", // purple
	"#76B7B2", // teal
	"#EDC948", // yellow
	"#FF9DA7", // pink
	"#9C755F", // brown
}

// CommunityColor returns the palette color for a community ID. IDs beyond
// the palette wrap around, so distinct communities may share a color on
// graphs with more than nine communities.
func CommunityColor(community int) string {
	if community < 0 {
		community = -community
	}
	return communityPalette[community%len(communityPalette)]
}
