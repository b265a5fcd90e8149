package server

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/StoreStation/VibeShitCraft/pkg/protocol"
)

// Gamemode constants matching Minecraft protocol values.
const (
	GameModeSurvival  byte = 0
	GameModeCreative  byte = 1
	GameModeAdventure byte = 2
	GameModeSpectator byte = 3
)

// Entity metadata flags (index 0, type byte).
const (
	EntityFlagInvisible byte = 0x20
)

// gameModeInfo collects the per-mode facts the server needs: the display
// name, the aliases ParseGameMode accepts, and the abilities bitfield for
// the 0x39 Player Abilities packet (invulnerable 0x01, flying 0x02, allow
// flying 0x04, instant break 0x08).
var gameModeInfo = map[byte]struct {
	name      string
	aliases   []string
	abilities byte
}{
	GameModeSurvival:  {"Survival", []string{"survival", "s", "0"}, 0x00},
	GameModeCreative:  {"Creative", []string{"creative", "c", "1"}, 0x0D},
	GameModeAdventure: {"Adventure", []string{"adventure", "a", "2"}, 0x00},
	GameModeSpectator: {"Spectator", []string{"spectator", "sp", "3"}, 0x07},
}

// ParseGameMode parses a gamemode string into its byte value.
// Returns the mode and true on success, or 0 and false on failure.
func ParseGameMode(s string) (byte, bool) {
	s = strings.ToLower(s)
	for mode, info := range gameModeInfo {
		for _, alias := range info.aliases {
			if s == alias {
				return mode, true
			}
		}
	}
	return 0, false
}

// GameModeName returns the display name for a gamemode.
func GameModeName(mode byte) string {
	if info, ok := gameModeInfo[mode]; ok {
		return info.name
	}
	return fmt.Sprintf("Unknown(%d)", mode)
}

// switchGameMode changes a player's gamemode, sending all necessary packets
// to the player and broadcasting updates to other players.
func (s *Server) switchGameMode(player *Player, mode byte) {
	player.mu.Lock()
	player.GameMode = mode
	player.NoClip = mode == GameModeSpectator
	player.mu.Unlock()

	// Change Game State (0x2B), reason 3 = change game mode.
	s.sendPacket(player, protocol.MarshalPacket(0x2B, func(w *bytes.Buffer) {
		protocol.WriteByte(w, 3)
		protocol.WriteFloat32(w, float32(mode))
	}))

	s.sendPlayerAbilities(player)
	s.broadcastPlayerListGamemode(player)
	s.broadcastEntityFlags(player)

	log.Printf("Player %s game mode changed to %s", player.Username, GameModeName(mode))
}

// sendPlayerAbilities sends the Player Abilities packet (0x39) for the
// player's current gamemode.
func (s *Server) sendPlayerAbilities(player *Player) {
	flags := gameModeInfo[player.GameMode].abilities
	s.sendPacket(player, protocol.MarshalPacket(0x39, func(w *bytes.Buffer) {
		protocol.WriteByte(w, flags)
		protocol.WriteFloat32(w, 0.05) // Flying speed
		protocol.WriteFloat32(w, 0.1)  // Walking speed (FOV modifier)
	}))
}

// broadcastPlayerListGamemode sends a Player List Item (action=1, Update
// Gamemode) to all players, updating the target's gamemode in the tab list.
func (s *Server) broadcastPlayerListGamemode(player *Player) {
	player.mu.Lock()
	gameMode := player.GameMode
	uuid := player.UUID
	player.mu.Unlock()

	s.broadcastPacket(protocol.MarshalPacket(0x38, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, 1) // Action: Update Gamemode
		protocol.WriteVarInt(w, 1) // Number of players
		protocol.WriteUUID(w, uuid)
		protocol.WriteVarInt(w, int32(gameMode))
	}))
}

// broadcastEntityFlags sends an Entity Metadata packet (0x1C) to all
// players with updated entity flags (index 0) for the given player. In
// spectator mode the invisible flag is set so the player renders as a
// transparent head to other spectators and not at all to everyone else.
func (s *Server) broadcastEntityFlags(player *Player) {
	player.mu.Lock()
	var flags byte
	if player.GameMode == GameModeSpectator {
		flags = EntityFlagInvisible
	}
	entityID := player.EntityID
	player.mu.Unlock()

	s.broadcastPacket(protocol.MarshalPacket(0x1C, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, entityID)
		protocol.WriteByte(w, 0x00) // header: (type 0 << 5) | index 0 = entity flags
		protocol.WriteByte(w, flags)
		protocol.WriteByte(w, 0x7F) // Metadata terminator
	}))
}
