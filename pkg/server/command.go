package server

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/StoreStation/VibeShitCraft/pkg/chat"
)

// commandHandlers dispatches /-commands by their first word.
var commandHandlers = map[string]func(s *Server, player *Player, args []string){
	"/gamemode": (*Server).handleGamemodeCommand,
	"/gm":       (*Server).handleGamemodeCommand,
	"/tp":       (*Server).handleTpCommand,
	"/teleport": (*Server).handleTpCommand,
	"/light":    (*Server).handleLightCommand,
	"/stop":     func(s *Server, player *Player, _ []string) { s.handleStopCommand(player) },
}

// handleCommand dispatches a /-prefixed command from a player.
func (s *Server) handleCommand(player *Player, message string) {
	parts := strings.Fields(message)
	if len(parts) == 0 {
		return
	}
	cmd := strings.ToLower(parts[0])
	log.Printf("Player %s issued command: %s", player.Username, message)

	handler, ok := commandHandlers[cmd]
	if !ok {
		s.sendChatToPlayer(player, chat.Colored("Unknown command: "+cmd, "red"))
		return
	}
	handler(s, player, parts[1:])
}

// handleGamemodeCommand handles /gamemode.
// Usage: /gamemode <survival|creative|adventure|spectator|0|1|2|3>
func (s *Server) handleGamemodeCommand(player *Player, args []string) {
	if len(args) < 1 {
		s.sendChatToPlayer(player, chat.Colored("Usage: /gamemode <survival|creative|adventure|spectator|0|1|2|3>", "red"))
		return
	}
	mode, ok := ParseGameMode(args[0])
	if !ok {
		s.sendChatToPlayer(player, chat.Colored("Unknown gamemode: "+args[0], "red"))
		return
	}

	s.switchGameMode(player, mode)
	s.sendChatToPlayer(player, chat.Colored("Game mode set to "+GameModeName(mode), "gray"))
}

// handleLightCommand reports the lighting engine's computed values at the
// player's feet, the quickest way to eyeball the flood fill in game.
// Usage: /light
func (s *Server) handleLightCommand(player *Player, _ []string) {
	player.mu.Lock()
	x := int32(math.Floor(player.X))
	y := int32(math.Floor(player.Y))
	z := int32(math.Floor(player.Z))
	player.mu.Unlock()

	blockLight, skyLight, ok := s.world.LightLevels(x, y, z)
	if !ok {
		s.sendChatToPlayer(player, chat.Colored("This chunk hasn't been lit yet.", "red"))
		return
	}
	s.sendChatToPlayer(player, chat.Colored(
		fmt.Sprintf("Light at (%d, %d, %d): block %d, sky %d", x, y, z, blockLight, skyLight), "gray"))
}

// handleTpCommand handles /tp.
// Usage: /tp <x> <y> <z> — teleport to coordinates
// Usage: /tp <player>    — teleport to another player
func (s *Server) handleTpCommand(player *Player, args []string) {
	switch len(args) {
	case 3:
		x, err1 := strconv.ParseFloat(args[0], 64)
		y, err2 := strconv.ParseFloat(args[1], 64)
		z, err3 := strconv.ParseFloat(args[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			s.sendChatToPlayer(player, chat.Colored("Invalid coordinates. Usage: /tp <x> <y> <z>", "red"))
			return
		}
		s.teleportPlayer(player, x, y, z)
		s.sendChatToPlayer(player, chat.Colored(fmt.Sprintf("Teleported to %.1f, %.1f, %.1f", x, y, z), "gray"))
		log.Printf("Player %s teleported to %.1f, %.1f, %.1f", player.Username, x, y, z)

	case 1:
		target := s.findPlayer(args[0])
		if target == nil {
			s.sendChatToPlayer(player, chat.Colored("Player not found: "+args[0], "red"))
			return
		}
		target.mu.Lock()
		tx, ty, tz := target.X, target.Y, target.Z
		target.mu.Unlock()

		s.teleportPlayer(player, tx, ty, tz)
		s.sendChatToPlayer(player, chat.Colored("Teleported to "+target.Username, "gray"))
		log.Printf("Player %s teleported to %s (%.1f, %.1f, %.1f)", player.Username, target.Username, tx, ty, tz)

	default:
		s.sendChatToPlayer(player, chat.Colored("Usage: /tp <x> <y> <z> or /tp <player>", "red"))
	}
}

// findPlayer looks a player up by name, case-insensitively.
func (s *Server) findPlayer(name string) *Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.players {
		if strings.EqualFold(p.Username, name) {
			return p
		}
	}
	return nil
}

// teleportPlayer moves a player to the given coordinates and syncs the change.
func (s *Server) teleportPlayer(player *Player, x, y, z float64) {
	player.mu.Lock()
	player.X = x
	player.Y = y
	player.Z = z
	yaw, pitch := player.Yaw, player.Pitch
	player.mu.Unlock()

	s.sendPacket(player, positionLookPacket(x, y, z, yaw, pitch))
	s.broadcastEntityTeleport(player)

	// Load/unload chunks around the new position.
	s.sendChunkUpdates(player)
}

// handleStopCommand handles /stop.
func (s *Server) handleStopCommand(player *Player) {
	log.Printf("Player %s issued /stop command, shutting down server...", player.Username)
	s.broadcastChat(chat.Colored("Server is stopping...", "red"))

	// Let the message drain before connections start closing.
	go func() {
		time.Sleep(500 * time.Millisecond)
		s.Stop()
	}()
}
