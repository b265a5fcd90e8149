package server

import (
	"bytes"

	"github.com/StoreStation/VibeShitCraft/pkg/chat"
	"github.com/StoreStation/VibeShitCraft/pkg/protocol"
)

// sendPacket writes one packet to one player under its connection lock.
func (s *Server) sendPacket(player *Player, pkt *protocol.Packet) {
	player.mu.Lock()
	if player.Conn != nil {
		protocol.WritePacket(player.Conn, pkt)
	}
	player.mu.Unlock()
}

// broadcastPacket sends pkt to every connected player.
func (s *Server) broadcastPacket(pkt *protocol.Packet) {
	s.broadcastPacketExcept(pkt, -1)
}

// broadcastPacketExcept sends pkt to every connected player except the one
// with the given entity ID (pass -1 to exclude nobody).
func (s *Server) broadcastPacketExcept(pkt *protocol.Packet, exceptEID int32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.players {
		if p.EntityID == exceptEID {
			continue
		}
		s.sendPacket(p, pkt)
	}
}

func chatPacket(msg chat.Message) *protocol.Packet {
	jsonMsg := msg.String()
	return protocol.MarshalPacket(0x02, func(w *bytes.Buffer) {
		protocol.WriteString(w, jsonMsg)
		protocol.WriteByte(w, 0) // Position: chat
	})
}

func (s *Server) broadcastChat(msg chat.Message) {
	s.broadcastPacket(chatPacket(msg))
}

// sendChatToPlayer sends a chat message to a single player.
func (s *Server) sendChatToPlayer(player *Player, msg chat.Message) {
	s.sendPacket(player, chatPacket(msg))
}

func (s *Server) broadcastBlockChange(x, y, z int32, blockState uint16) {
	s.broadcastPacket(protocol.MarshalPacket(0x23, func(w *bytes.Buffer) {
		protocol.WritePosition(w, x, y, z)
		protocol.WriteVarInt(w, int32(blockState))
	}))
}

func (s *Server) broadcastBlockBreakEffect(breaker *Player, x, y, z int32, blockState uint16) {
	blockID := blockState >> 4
	metadata := blockState & 0x0F
	effectData := int32(blockID) | (int32(metadata) << 12)

	pkt := protocol.MarshalPacket(0x28, func(w *bytes.Buffer) {
		protocol.WriteInt32(w, 2001) // Effect ID: block break
		protocol.WritePosition(w, x, y, z)
		protocol.WriteInt32(w, effectData)
		protocol.WriteBool(w, false) // Disable relative volume
	})
	// The breaking player already sees the effect client-side.
	s.broadcastPacketExcept(pkt, breaker.EntityID)
}

// entityMovePacket builds an Entity Teleport (0x18) with 1.8's fixed-point
// coordinates and angle bytes.
func entityMovePacket(entityID int32, x, y, z float64, yaw, pitch float32, onGround bool) *protocol.Packet {
	return protocol.MarshalPacket(0x18, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, entityID)
		protocol.WriteInt32(w, int32(x*32))
		protocol.WriteInt32(w, int32(y*32))
		protocol.WriteInt32(w, int32(z*32))
		protocol.WriteByte(w, byte(yaw*256/360))
		protocol.WriteByte(w, byte(pitch*256/360))
		protocol.WriteBool(w, onGround)
	})
}

func (s *Server) broadcastEntityTeleportByID(entityID int32, x, y, z float64, yaw, pitch float32, onGround bool) {
	s.broadcastPacket(entityMovePacket(entityID, x, y, z, yaw, pitch, onGround))
}

func (s *Server) broadcastEntityVelocity(entityID int32, vx, vy, vz float64) {
	s.broadcastPacket(protocol.MarshalPacket(0x12, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, entityID)
		protocol.WriteInt16(w, int16(vx*8000))
		protocol.WriteInt16(w, int16(vy*8000))
		protocol.WriteInt16(w, int16(vz*8000))
	}))
}

func (s *Server) broadcastEntityTeleport(player *Player) {
	player.mu.Lock()
	pkt := entityMovePacket(player.EntityID, player.X, player.Y, player.Z, player.Yaw, player.Pitch, player.OnGround)
	eid := player.EntityID
	player.mu.Unlock()

	s.broadcastPacketExcept(pkt, eid)
}

func (s *Server) broadcastEntityLook(player *Player) {
	player.mu.Lock()
	yaw := player.Yaw
	pitch := player.Pitch
	onGround := player.OnGround
	eid := player.EntityID
	player.mu.Unlock()

	look := protocol.MarshalPacket(0x16, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, eid)
		protocol.WriteByte(w, byte(yaw*256/360))
		protocol.WriteByte(w, byte(pitch*256/360))
		protocol.WriteBool(w, onGround)
	})
	headRotation := protocol.MarshalPacket(0x19, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, eid)
		protocol.WriteByte(w, byte(yaw*256/360))
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, other := range s.players {
		if other.EntityID == eid {
			continue
		}
		s.sendPacket(other, look)
		s.sendPacket(other, headRotation)
	}
}

func (s *Server) broadcastAnimation(player *Player, animationID byte) {
	pkt := protocol.MarshalPacket(0x0B, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, player.EntityID)
		protocol.WriteByte(w, animationID)
	})
	s.broadcastPacketExcept(pkt, player.EntityID)
}

func (s *Server) broadcastDestroyEntity(entityID int32) {
	s.broadcastPacket(protocol.MarshalPacket(0x13, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, 1) // Count
		protocol.WriteVarInt(w, entityID)
	}))
}

func (s *Server) broadcastEntityStatus(entityID int32, status byte) {
	s.broadcastPacket(protocol.MarshalPacket(0x1A, func(w *bytes.Buffer) {
		protocol.WriteInt32(w, entityID)
		protocol.WriteByte(w, status)
	}))
}

// broadcastHeldItem sends an Entity Equipment packet (0x04) to all other
// players so they see the correct item in the given player's hand.
func (s *Server) broadcastHeldItem(player *Player) {
	player.mu.Lock()
	entityID := player.EntityID
	slotIndex := 36 + int(player.ActiveSlot)
	if slotIndex < 36 || slotIndex >= len(player.Inventory) {
		player.mu.Unlock()
		return
	}
	slot := player.Inventory[slotIndex]
	player.mu.Unlock()

	pkt := protocol.MarshalPacket(0x04, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, entityID)
		// Slot 0 = item in hand in Minecraft 1.8
		protocol.WriteInt16(w, 0)
		protocol.WriteSlotData(w, slot.ItemID, slot.Count, slot.Damage)
	})
	s.broadcastPacketExcept(pkt, entityID)
}

// broadcastPlayerListRemove sends a Player List Item (action=4, Remove
// Player) to all connected players, dropping the target from the tab list.
func (s *Server) broadcastPlayerListRemove(uuid [16]byte) {
	s.broadcastPacket(protocol.MarshalPacket(0x38, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, 4) // Action: Remove Player
		protocol.WriteVarInt(w, 1) // Number of players
		protocol.WriteUUID(w, uuid)
	}))
}

func (s *Server) spawnPlayerForOthers(player *Player) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, other := range s.players {
		if other.EntityID == player.EntityID {
			continue
		}
		s.sendSpawnPlayer(other, player)
	}
}

func (s *Server) spawnOthersForPlayer(player *Player) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, other := range s.players {
		if other.EntityID == player.EntityID {
			continue
		}
		s.sendSpawnPlayer(player, other)
	}
}

func (s *Server) sendSpawnPlayer(viewer *Player, target *Player) {
	target.mu.Lock()
	x, y, z := target.X, target.Y, target.Z
	yaw, pitch := target.Yaw, target.Pitch
	targetGameMode := target.GameMode
	// The held item ID goes into the spawn packet so the viewer immediately
	// sees the correct item model.
	currentItemID := int16(0)
	slotIndex := 36 + int(target.ActiveSlot)
	if slotIndex >= 36 && slotIndex < len(target.Inventory) {
		if held := target.Inventory[slotIndex]; held.ItemID > 0 {
			currentItemID = held.ItemID
		}
	}
	target.mu.Unlock()

	// Player List Item (Add Player) - 0x38
	playerListAdd := protocol.MarshalPacket(0x38, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, 0) // Action: Add Player
		protocol.WriteVarInt(w, 1) // Number of players
		protocol.WriteUUID(w, target.UUID)
		protocol.WriteString(w, target.Username)
		protocol.WriteVarInt(w, 0)                      // Number of properties
		protocol.WriteVarInt(w, int32(target.GameMode)) // Gamemode
		protocol.WriteVarInt(w, 0)                      // Ping
		protocol.WriteBool(w, false)                    // Has display name
	})
	s.sendPacket(viewer, playerListAdd)

	// Spectators render invisible to everyone else.
	var entityFlags byte
	if targetGameMode == GameModeSpectator {
		entityFlags = EntityFlagInvisible
	}

	// Spawn Player - 0x0C
	spawnPlayer := protocol.MarshalPacket(0x0C, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, target.EntityID)
		protocol.WriteUUID(w, target.UUID)
		protocol.WriteInt32(w, int32(x*32)) // Fixed-point X
		protocol.WriteInt32(w, int32(y*32)) // Fixed-point Y
		protocol.WriteInt32(w, int32(z*32)) // Fixed-point Z
		protocol.WriteByte(w, byte(yaw*256/360))
		protocol.WriteByte(w, byte(pitch*256/360))
		// Current item in hand (ID, not slot index)
		protocol.WriteInt16(w, currentItemID)
		// Minimal entity metadata so clients always receive a non-empty
		// DataWatcher list for spawned players:
		// Index 0, type 0 (byte) = entity flags
		protocol.WriteByte(w, 0x00)        // header: (type 0 << 5) | index 0
		protocol.WriteByte(w, entityFlags) // flags
		protocol.WriteByte(w, 0x7F)        // Metadata terminator
	})
	s.sendPacket(viewer, spawnPlayer)
}
