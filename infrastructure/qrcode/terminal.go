package qrcode

import (
	"io"

	"github.com/mdp/qrterminal/v3"
)

// WriteTerminal renders the payload for code as half-block characters.
func (g *Generator) WriteTerminal(w io.Writer, code string) {
	qrterminal.GenerateHalfBlock(g.Payload(code), qrterminal.M, w)
}
