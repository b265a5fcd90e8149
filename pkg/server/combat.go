package server

import (
	"bytes"
	"log"
	"math"

	"github.com/StoreStation/VibeShitCraft/pkg/chat"
	"github.com/StoreStation/VibeShitCraft/pkg/protocol"
)

const (
	attackDamage     = float32(2.0) // one heart per hit
	knockbackSpeed   = 0.4
	knockbackLift    = 0.4
	respawnX         = 8
	respawnZ         = 8
	entityStatusHurt = 2
	entityStatusDead = 3
)

// positionLookPacket builds a Player Position And Look (0x08) with all
// coordinates absolute.
func positionLookPacket(x, y, z float64, yaw, pitch float32) *protocol.Packet {
	return protocol.MarshalPacket(0x08, func(w *bytes.Buffer) {
		protocol.WriteFloat64(w, x)
		protocol.WriteFloat64(w, y)
		protocol.WriteFloat64(w, z)
		protocol.WriteFloat32(w, yaw)
		protocol.WriteFloat32(w, pitch)
		protocol.WriteByte(w, 0) // Flags: all absolute
	})
}

// damageable reports whether the target can currently take damage. Caller
// must hold target.mu.
func damageable(target *Player) bool {
	return !target.IsDead && target.GameMode != GameModeCreative && target.GameMode != GameModeSpectator
}

func (s *Server) handleAttack(attacker *Player, targetID int32) {
	attacker.mu.Lock()
	if attacker.GameMode == GameModeSpectator {
		attacker.mu.Unlock()
		return
	}
	attackerX, attackerZ := attacker.X, attacker.Z
	attacker.mu.Unlock()

	s.mu.RLock()
	target, ok := s.players[targetID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	target.mu.Lock()
	if !damageable(target) {
		target.mu.Unlock()
		return
	}
	targetX, targetZ := target.X, target.Z
	target.mu.Unlock()

	isDead := s.applyDamage(target, attackDamage, "was slain by "+attacker.Username)
	if isDead {
		return
	}

	// Knock the target away from the attacker with a small upward pop.
	dx := targetX - attackerX
	dz := targetZ - attackerZ
	if dist := math.Sqrt(dx*dx + dz*dz); dist > 0 {
		s.sendEntityVelocity(target, dx/dist*knockbackSpeed, knockbackLift, dz/dist*knockbackSpeed)
	}
}

// applyDamage subtracts health, marks death, and mirrors the result to
// every client. Returns whether the target died.
func (s *Server) applyDamage(target *Player, damage float32, deathMessage string) bool {
	target.mu.Lock()
	if !damageable(target) {
		target.mu.Unlock()
		return false
	}
	target.Health -= damage
	if target.Health <= 0 {
		target.Health = 0
		target.IsDead = true
	}
	isDead := target.IsDead
	target.mu.Unlock()

	s.broadcastAnimation(target, 1) // take damage
	s.broadcastEntityStatus(target.EntityID, entityStatusHurt)
	s.sendHealth(target)

	if isDead {
		s.broadcastEntityStatus(target.EntityID, entityStatusDead)
		s.broadcastChat(chat.Colored(target.Username+" "+deathMessage, "red"))
		log.Printf("Player %s %s", target.Username, deathMessage)
	}
	return isDead
}

// sendEntityVelocity pushes a velocity update to the moved player. The
// wire unit is 1/8000 blocks per tick.
func (s *Server) sendEntityVelocity(player *Player, vx, vy, vz float64) {
	log.Printf("Sending velocity to %s: %f, %f, %f", player.Username, vx, vy, vz)
	s.sendPacket(player, protocol.MarshalPacket(0x12, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, player.EntityID)
		protocol.WriteInt16(w, int16(vx*8000))
		protocol.WriteInt16(w, int16(vy*8000))
		protocol.WriteInt16(w, int16(vz*8000))
	}))
}

func (s *Server) handleRespawn(player *Player) {
	player.mu.Lock()
	if !player.IsDead {
		player.mu.Unlock()
		return
	}
	player.Health = 20.0
	player.IsDead = false
	spawnY := float64(s.world.Gen.SurfaceHeight(respawnX, respawnZ)) + 1.0
	player.X = respawnX
	player.Y = spawnY
	player.Z = respawnZ
	gameMode := player.GameMode
	player.mu.Unlock()

	// Respawn (0x07) puts the client back in the world.
	s.sendPacket(player, protocol.MarshalPacket(0x07, func(w *bytes.Buffer) {
		protocol.WriteInt32(w, 0) // Overworld
		protocol.WriteByte(w, 0)  // Peaceful difficulty
		protocol.WriteByte(w, gameMode)
		protocol.WriteString(w, "default")
	}))
	s.sendPacket(player, positionLookPacket(respawnX, spawnY, respawnZ, 0, 0))
	s.sendHealth(player)

	// Everyone else re-learns about the freshly alive player.
	s.broadcastDestroyEntity(player.EntityID)
	s.spawnPlayerForOthers(player)

	log.Printf("Player %s respawned", player.Username)
}

func (s *Server) sendHealth(player *Player) {
	player.mu.Lock()
	health := player.Health
	player.mu.Unlock()

	s.sendPacket(player, protocol.MarshalPacket(0x06, func(w *bytes.Buffer) {
		protocol.WriteFloat32(w, health)
		protocol.WriteVarInt(w, 20)   // Food
		protocol.WriteFloat32(w, 5.0) // Food Saturation
	}))
}
