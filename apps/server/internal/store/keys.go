package store

// Room-scoped keys are namespaced by room code; hands and players are
// hashes keyed by player id.

func RoomMetaKey(code string) string { return "room:" + code + ":meta" }

func RoomPlayersKey(code string) string { return "room:" + code + ":players" }

func RoomStateKey(code string) string { return "room:" + code + ":state" }

func RoomHandsKey(code string) string { return "room:" + code + ":hands" }

func UserKey(id string) string { return "user:" + id }
