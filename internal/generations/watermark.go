package generations

// Banner marks a demo result produced for an unentitled caller.
const Banner = "=== WERSJA DEMO / DEMO VERSION - UPGRADE TO UNLOCK THE FULL RESULT ==="

// applyWatermark wraps the body with the banner, once at each end.
func applyWatermark(body string) string {
	return Banner + "\n\n" + body + "\n\n" + Banner
}
