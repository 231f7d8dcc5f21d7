// Package viewmodel shapes chain game state for a single connected player.
package viewmodel

import (
	"math/big"

	"chain-poker/internal/amount"
	"chain-poker/internal/game"
)

type SeatView struct {
	Address  string `json:"address"`
	Balance  string `json:"balance"`
	IsButton bool   `json:"is_button"`
	IsTurn   bool   `json:"is_turn"`
	IsMe     bool   `json:"is_me"`
}

type TableView struct {
	Pot            string     `json:"pot"`
	MinBet         string     `json:"min_bet"`
	CommunityCards []string   `json:"community_cards"`
	MyHoleCards    []string   `json:"my_hole_cards"`
	MyBalance      string     `json:"my_balance"`
	IsMyTurn       bool       `json:"is_my_turn"`
	Seats          []SeatView `json:"seats"`
}

type LobbyView struct {
	Admin     string     `json:"admin"`
	IsAdmin   bool       `json:"is_admin"`
	IsStarted bool       `json:"is_started"`
	BigBlind  string     `json:"big_blind"`
	MinBuyIn  string     `json:"min_buy_in"`
	MaxBuyIn  string     `json:"max_buy_in"`
	Joined    bool       `json:"joined"`
	Seats     []SeatView `json:"seats"`
}

func scrt(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return amount.MustDecimal(v)
}

func cards(cs []game.Card) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.String())
	}
	return out
}

// BuildTable renders st as seen by identity. Amounts are decimal SCRT.
func BuildTable(st game.InGameStatus, identity string) TableView {
	seats := make([]SeatView, 0, len(st.Balances))
	for _, b := range st.Balances {
		seats = append(seats, SeatView{
			Address:  b.Address,
			Balance:  scrt(b.Amount),
			IsButton: b.Address == st.ButtonPlayer,
			IsTurn:   b.Address == st.CurrentTurn,
			IsMe:     b.Address == identity,
		})
	}
	myBalance := "0"
	if bal := st.Balances.Of(identity); bal != nil {
		myBalance = scrt(bal)
	}
	return TableView{
		Pot:            scrt(st.Pot),
		MinBet:         scrt(st.MinBet),
		CommunityCards: cards(st.Table),
		MyHoleCards:    cards(st.Hand),
		MyBalance:      myBalance,
		IsMyTurn:       st.IsTurnOf(identity),
		Seats:          seats,
	}
}

func BuildLobby(st game.LobbyStatus, identity string) LobbyView {
	seats := make([]SeatView, 0, len(st.Balances))
	for _, b := range st.Balances {
		seats = append(seats, SeatView{
			Address: b.Address,
			Balance: scrt(b.Amount),
			IsMe:    b.Address == identity,
		})
	}
	return LobbyView{
		Admin:     st.Admin,
		IsAdmin:   identity != "" && st.Admin == identity,
		IsStarted: st.IsStarted,
		BigBlind:  scrt(new(big.Int).SetUint64(uint64(st.LobbyConfig.BigBlind))),
		MinBuyIn:  scrt(st.LobbyConfig.MinBuyIn()),
		MaxBuyIn:  scrt(st.LobbyConfig.MaxBuyIn()),
		Joined:    st.Balances.Of(identity) != nil,
		Seats:     seats,
	}
}
