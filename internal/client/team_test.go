package client

import (
	"errors"
	"testing"

	"github.com/Jaime-2616/ErronkaFinala/internal/game"
)

func TestBuildCreaturesScalesHP(t *testing.T) {
	payload := `[
		{
			"dex_id": 6, "name": "charizard",
			"type1": "fire", "type2": "flying",
			"hp": 78, "attack": 84, "defense": 78,
			"sp_attack": 109, "sp_defense": 85, "speed": 100,
			"moves": [
				{"slot": 1, "name": "flamethrower", "type": "fire", "category": "special", "power": 90, "accuracy": 100},
				{"slot": 3, "name": "slash", "type": "normal", "category": "physical", "power": 70, "accuracy": 100}
			]
		},
		{
			"dex_id": 25, "name": "pikachu",
			"type1": "electric", "type2": "",
			"hp": 35, "attack": 55, "defense": 40,
			"sp_attack": 50, "sp_defense": 50, "speed": 90,
			"moves": []
		}
	]`

	team, err := BuildCreatures([]byte(payload))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(team) != 2 {
		t.Fatalf("team size = %d", len(team))
	}

	char := team[0]
	if char.MaxHP != 195 || char.CurrentHP != 195 {
		t.Fatalf("charizard hp = %d/%d, want 195", char.CurrentHP, char.MaxHP)
	}
	if len(char.Types) != 2 || char.Types[1] != "flying" {
		t.Fatalf("charizard types = %v", char.Types)
	}
	if char.Moves[0].Name != "flamethrower" || char.Moves[0].Category != game.CategorySpecial {
		t.Fatalf("slot 1 = %+v", char.Moves[0])
	}
	if char.Moves[1].Name != "" {
		t.Fatalf("slot 2 should be empty: %+v", char.Moves[1])
	}
	if char.Moves[2].Name != "slash" || char.Moves[2].Category != game.CategoryPhysical {
		t.Fatalf("slot 3 = %+v", char.Moves[2])
	}

	pika := team[1]
	// 35 * 2.5 = 87.5, rounded away from zero.
	if pika.MaxHP != 88 {
		t.Fatalf("pikachu hp = %d, want 88", pika.MaxHP)
	}
	if len(pika.Types) != 1 {
		t.Fatalf("pikachu types = %v", pika.Types)
	}
}

func TestBuildCreaturesRejectsEmptyTeam(t *testing.T) {
	if _, err := BuildCreatures([]byte(`[]`)); err != ErrEmptyTeam {
		t.Fatalf("err = %v", err)
	}
	if _, err := BuildCreatures([]byte(`nope`)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestParseResponse(t *testing.T) {
	if payload, err := ParseResponse("OK|42\n"); err != nil || payload != "42" {
		t.Fatalf("payload=%q err=%v", payload, err)
	}
	if payload, err := ParseResponse("OK\n"); err != nil || payload != "" {
		t.Fatalf("payload=%q err=%v", payload, err)
	}
	_, err := ParseResponse("ERROR|user not found\n")
	var se *ServerError
	if !errors.As(err, &se) || se.Message != "user not found" {
		t.Fatalf("err = %v", err)
	}
	if _, err := ParseResponse("garbage\n"); err == nil {
		t.Fatalf("expected malformed error")
	}
}
