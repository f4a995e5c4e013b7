package anim

// TruckSprite is the built-in truck bitmap. Each line is exactly 26
// runes, matching DefaultWidth, so the truck fills a full chat row.
var TruckSprite = Sprite{
	"▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒",
	"▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒",
	"▛▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀▀█▒▒▒▒▒",
	"▌▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒█▄▄▄▒▒",
	"▌▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒█▒▒▐▒▒",
	"▌▒▒▒▀▀▜▒▀▀▜▒▛▜▒▛▜▒▒▒█║█▐▒▒",
	"▌▄▄▒▄▄▟▒▄▄▟║▙▟▒▙▟▒▒▒█║▌▐▒▒",
	"▌▒▒▒▌▒▒▒▌▒▒▒▌▌▒▌▌▒▒▒█████▒",
	"▌▒▒▒▙▄▄▒▙▄▄▒▌▙▒▌▙▒▒▒█████▒",
	"▌▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒▒█████▒",
	"▙▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄▄█████▒",
	"▒▒▛▜▛▜▒▒▒▒▒▒▒▒▒▒▛▜▛▜▒▒▒▒▒▒",
	"▒▒▙▟▙▟▒▒▒▒▒▒▒▒▒▒▙▟▙▟▒▒▒▒▒▒",
}
