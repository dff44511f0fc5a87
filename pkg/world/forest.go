package world

// ForestQuestName is the identifier for the built-in world.
const ForestQuestName = "forest_quest"

// ForestQuest returns the built-in forest adventure graph. It is small on
// purpose: a handful of scenes with short, voice-friendly descriptions.
// The graph is validated, so construction failure is a programming error.
func ForestQuest() *Graph {
	g, err := NewGraph(forestQuest())
	if err != nil {
		panic("built-in world is invalid: " + err.Error())
	}
	return g
}

func forestQuest() *World {
	return &World{
		Name:        ForestQuestName,
		Description: "A tiny outdoors adventure with a forest, a cave and a single golden coin.",
		Entry:       "intro",
		Scenes: []Scene{
			{
				ID:    "intro",
				Title: "Forest Edge",
				Description: "You stand at the edge of a quiet forest. A narrow path leads inside. " +
					"To your right, a wooden sign points ahead: 'Cave — 5 minutes'.",
				Choices: []Choice{
					{Key: "enter_forest", Description: "Walk into the forest.", Scene: "forest"},
					{Key: "read_sign", Description: "Read the wooden sign.", Scene: "sign"},
				},
			},
			{
				ID:          "sign",
				Title:       "The Signpost",
				Description: "The sign simply says: 'Cave – 5 minutes ahead'. The forest path is the only way forward.",
				Choices: []Choice{
					{Key: "go_to_forest", Description: "Walk into the forest.", Scene: "forest"},
					{Key: "return", Description: "Step back from the sign.", Scene: "intro"},
				},
			},
			{
				ID:          "forest",
				Title:       "Inside the Forest",
				Description: "The forest is calm. Birds chirp. The path becomes dimmer as it approaches a cave entrance.",
				Choices: []Choice{
					{Key: "go_to_cave", Description: "Walk toward the cave.", Scene: "cave"},
					{Key: "look_around", Description: "Look around the peaceful forest.", Scene: "forest_look"},
					{Key: "back", Description: "Return to the edge of the forest.", Scene: "intro"},
				},
			},
			{
				ID:          "forest_look",
				Title:       "A Peaceful Spot",
				Description: "Sunlight breaks through leaves. You find nothing of note — just quiet and a faint breeze.",
				Choices: []Choice{
					{Key: "continue_to_cave", Description: "Continue to the cave entrance.", Scene: "cave"},
					{Key: "back", Description: "Return to the forest path.", Scene: "forest"},
				},
			},
			{
				ID:          "cave",
				Title:       "The Cave Entrance",
				Description: "The cave is cool. A soft glow comes from deeper inside. You hear a distant drip.",
				Choices: []Choice{
					{Key: "enter_cave", Description: "Go deeper into the cave.", Scene: "treasure"},
					{Key: "leave", Description: "Return to the forest.", Scene: "forest"},
				},
			},
			{
				ID:          "treasure",
				Title:       "Treasure Chamber",
				Description: "You step into a small chamber. On a stone pedestal sits a tiny glowing chest. Inside, a single golden coin rests.",
				Choices: []Choice{
					{
						Key:         "take_coin",
						Description: "Take the golden coin.",
						Scene:       "ending",
						Effects:     []Effect{{Type: EffectAddJournal, Text: "Found a tiny golden coin."}},
					},
					{Key: "leave_it", Description: "Leave the coin and go back.", Scene: "forest"},
				},
			},
			{
				ID:          "ending",
				Title:       "A Happy Ending",
				Description: "You take the golden coin. A warm light fills the chamber. The small adventure is complete.",
				Choices: []Choice{
					{Key: "restart", Description: "Start a new game.", Scene: "intro"},
				},
			},
		},
	}
}
