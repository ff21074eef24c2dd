package tui

// runningFrames cycle while steps are being counted.
var runningFrames = []string{
	"   O  \n" +
		"  /|\\_\n" +
		" _/ \\ \n" +
		"     \\",
	"   O  \n" +
		"  /|\\ \n" +
		"   |  \n" +
		"  / \\ ",
	"   O  \n" +
		" _/|\\ \n" +
		"  / \\_\n" +
		" /    ",
	"   O  \n" +
		"  /|\\ \n" +
		"   |  \n" +
		"  | | ",
}

// sittingFrame is shown while the count is zero.
const sittingFrame = "   O  \n" +
	"  /|\\ \n" +
	"  _|__\n" +
	"  |  |"

// figure returns the figure for the given activity and animation tick.
func figure(running bool, tick int) string {
	if !running {
		return sittingFrame
	}
	return runningFrames[tick%len(runningFrames)]
}
