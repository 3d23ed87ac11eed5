package league

// ApplyDefaults fills fields older documents leave out. It runs once after decoding
// so the engine never needs optional-field fallbacks.
func ApplyDefaults(doc *Document) {
	if doc == nil {
		return
	}
	if doc.Leagues == nil {
		doc.Leagues = make(map[string]*League)
	}
	for id, l := range doc.Leagues {
		if l == nil {
			l = &League{}
			doc.Leagues[id] = l
		}
		applyLeagueDefaults(l)
	}
}

func applyLeagueDefaults(l *League) {
	if l.Info.BestOfFrames == 0 {
		l.Info.BestOfFrames = DefaultBestOfFrames
	}
	if l.Players == nil {
		l.Players = []Player{}
	}
	if l.Rounds == nil {
		l.Rounds = []Round{}
	}
	for i := range l.Players {
		if l.Players[i].Active == nil {
			active := true
			l.Players[i].Active = &active
		}
	}
	for r := range l.Rounds {
		round := &l.Rounds[r]
		if round.Status == "" {
			round.Status = StatusPending
		}
		if round.Matches == nil {
			round.Matches = []Match{}
		}
		for m := range round.Matches {
			match := &round.Matches[m]
			if match.Status == "" {
				match.Status = StatusPending
			}
			if match.Frames == nil {
				match.Frames = []Frame{}
			}
		}
	}
}
