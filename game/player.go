package game

type playerState struct {
	points int
	turns  int
}

func (p *playerState) reset() {
	p.points = 0
	p.turns = 0
}
