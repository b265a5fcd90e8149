package server

import (
	"bytes"
	"log"
	"math"
	"math/rand"

	"github.com/StoreStation/VibeShitCraft/pkg/protocol"
	"github.com/StoreStation/VibeShitCraft/pkg/world"
)

// isDoorID reports whether a block ID is one of the door blocks (wooden
// doors 64/193-197, iron door 71), which occupy two vertical blocks.
func isDoorID(id uint16) bool {
	return id == 64 || id == 71 || (id >= 193 && id <= 197)
}

// isReplaceableID reports whether a block can be overwritten by placement:
// air and liquids.
func isReplaceableID(id uint16) bool {
	return id == 0 || (id >= 8 && id <= 11)
}

// resyncHeldSlot re-sends the player's active hotbar slot, cancelling a
// client-side action the server rejected.
func (s *Server) resyncHeldSlot(player *Player) {
	player.mu.Lock()
	defer player.mu.Unlock()
	s.sendSlotLocked(player, 36+int(player.ActiveSlot))
}

// sendSlotLocked sends a Set Slot (0x2F) for the given inventory index.
// Caller must hold player.mu.
func (s *Server) sendSlotLocked(player *Player, slotIndex int) {
	if slotIndex < 0 || slotIndex >= len(player.Inventory) {
		return
	}
	slot := player.Inventory[slotIndex]
	pkt := protocol.MarshalPacket(0x2F, func(w *bytes.Buffer) {
		protocol.WriteByte(w, 0) // Window ID 0 = player inventory
		protocol.WriteInt16(w, int16(slotIndex))
		protocol.WriteSlotData(w, slot.ItemID, slot.Count, slot.Damage)
	})
	if player.Conn != nil {
		protocol.WritePacket(player.Conn, pkt)
	}
}

// consumeHeldItem decrements the active hotbar stack by one (survival
// only) and syncs the slot to the client.
func (s *Server) consumeHeldItem(player *Player) {
	player.mu.Lock()
	defer player.mu.Unlock()
	if player.GameMode != GameModeSurvival {
		return
	}
	slotIndex := 36 + int(player.ActiveSlot)
	if slotIndex < 0 || slotIndex >= len(player.Inventory) {
		return
	}
	consumeSlot(&player.Inventory[slotIndex])
	s.sendSlotLocked(player, slotIndex)
}

func (s *Server) handleBlockBreak(player *Player, x, y, z int32) {
	blockState := s.world.GetBlock(x, y, z)
	blockID := blockState >> 4

	// Air can't be broken; bedrock won't be.
	if blockID == 0 || blockID == 7 {
		return
	}

	// Broadcast the break effect before the block turns to air: clients
	// rendering particles for certain states (stairs, doors) crash when the
	// position already reads as air.
	s.broadcastBlockBreakEffect(player, x, y, z, blockState)

	giveItem := player.GameMode != GameModeCreative
	var itemID, damage int16
	var count byte
	if giveItem {
		itemID, damage, count = world.BlockToItemID(blockState)
	}

	// Doors and double plants occupy two blocks; breaking one half removes
	// both. The upper half carries bit 0x08 in its metadata.
	if isDoorID(blockID) || blockID == 175 {
		otherY := y + 1
		if blockState&0x08 != 0 {
			otherY = y - 1
		}
		otherState := s.world.GetBlock(x, otherY, z)
		if otherState>>4 == blockID {
			// Upper door halves drop nothing; take the drop from the lower half.
			if isDoorID(blockID) && giveItem && itemID < 0 {
				itemID, damage, count = world.BlockToItemID(otherState)
			}
			s.world.SetBlock(x, otherY, z, 0)
			s.broadcastBlockChange(x, otherY, z, 0)
		}
	}

	s.world.SetBlock(x, y, z, 0)
	s.broadcastBlockChange(x, y, z, 0)

	if !giveItem || itemID < 0 {
		return
	}

	// Drop the item at the block center with a small random kick.
	vx := rand.Float64()*0.2 - 0.1
	vz := rand.Float64()*0.2 - 0.1
	s.SpawnItem(float64(x)+0.5, float64(y)+0.5, float64(z)+0.5, vx, 0.2, vz, itemID, damage, count)

	log.Printf("Player %s broke block %d at (%d, %d, %d), spawned item %d:%d (count: %d)", player.Username, blockID, x, y, z, itemID, damage, count)
}

// handleBlockPlacement processes a Block Placement packet (0x08).
func (s *Server) handleBlockPlacement(player *Player, r *bytes.Reader) {
	x, y, z, _ := protocol.ReadPosition(r)
	face, _ := protocol.ReadByte(r)
	itemID, _, damage, _ := protocol.ReadSlotData(r)
	cursorX, _ := protocol.ReadByte(r)
	cursorY, _ := protocol.ReadByte(r)
	_, _ = protocol.ReadByte(r) // cursorZ, unused

	if player.GameMode == GameModeSpectator || player.GameMode == GameModeAdventure {
		s.resyncHeldSlot(player)
		return
	}

	// The special position (-1, 255, -1) means "use item", not placement.
	if x == -1 && y == 255 && z == -1 {
		s.handleUseItem(player, itemID)
		return
	}

	clickedState := s.world.GetBlock(x, y, z)
	clickedID := clickedState >> 4

	if clickedID == 58 { // crafting table
		s.openCraftingTable(player)
		return
	}
	if isDoorID(clickedID) {
		s.toggleDoor(player, x, y, z, clickedState)
		return
	}

	if itemID == 383 { // spawn egg against a block face
		tx, ty, tz := faceOffset(x, y, z, face)
		s.useSpawnEgg(player, float64(tx)+0.5, float64(ty), float64(tz)+0.5)
		return
	}

	s.tryPlaceBlock(player, x, y, z, face, itemID, damage, cursorX, cursorY)
}

// handleUseItem covers right-clicking the air with the held item.
func (s *Server) handleUseItem(player *Player, itemID int16) {
	if itemID == 383 {
		player.mu.Lock()
		px, py, pz := player.X, player.Y, player.Z
		player.mu.Unlock()
		s.useSpawnEgg(player, px, py+1.0, pz)
		return
	}
	// Nothing else is usable in air; put the client's slot back.
	s.resyncHeldSlot(player)
}

// useSpawnEgg spawns the mob encoded in the held egg's damage value and
// consumes the egg in survival.
func (s *Server) useSpawnEgg(player *Player, x, y, z float64) {
	player.mu.Lock()
	slotIndex := 36 + int(player.ActiveSlot)
	mobType := byte(player.Inventory[slotIndex].Damage)
	player.mu.Unlock()

	s.SpawnMob(x, y, z, mobType)
	s.consumeHeldItem(player)
	log.Printf("Player %s used spawn egg (mob type %d) at (%.1f, %.1f, %.1f)", player.Username, mobType, x, y, z)
}

// openCraftingTable opens the 3x3 crafting window.
func (s *Server) openCraftingTable(player *Player) {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.OpenWindowID = 1
	for i := range player.CraftTableGrid {
		player.CraftTableGrid[i] = Slot{ItemID: -1}
	}
	player.CraftTableOutput = Slot{ItemID: -1}
	openPkt := protocol.MarshalPacket(0x2D, func(w *bytes.Buffer) {
		protocol.WriteByte(w, 1)                            // Window ID
		protocol.WriteString(w, "minecraft:crafting_table") // Window Type
		protocol.WriteString(w, `{"text":"Crafting"}`)      // Window Title
		protocol.WriteByte(w, 0)                            // Number of Slots
	})
	if player.Conn != nil {
		protocol.WritePacket(player.Conn, openPkt)
	}
}

// toggleDoor flips the open bit on a door's lower half and mirrors both
// halves to every client.
func (s *Server) toggleDoor(player *Player, x, y, z int32, clickedState uint16) {
	blockID := clickedState >> 4
	meta := clickedState & 0x0F

	lowerY := y
	if meta&0x08 != 0 {
		lowerY = y - 1
	}
	upperY := lowerY + 1

	lowerMeta := s.world.GetBlock(x, lowerY, z) & 0x0F
	upperMeta := s.world.GetBlock(x, upperY, z) & 0x0F

	newLower := blockID<<4 | (lowerMeta ^ 0x04)
	newUpper := blockID<<4 | upperMeta

	s.world.SetBlock(x, lowerY, z, newLower)
	s.broadcastBlockChange(x, lowerY, z, newLower)
	s.world.SetBlock(x, upperY, z, newUpper)
	s.broadcastBlockChange(x, upperY, z, newUpper)

	soundPkt := protocol.MarshalPacket(0x28, func(w *bytes.Buffer) {
		protocol.WriteInt32(w, 1003) // Effect ID: open/close door
		protocol.WritePosition(w, x, y, z)
		protocol.WriteInt32(w, 0)
		protocol.WriteBool(w, false)
	})
	s.broadcastPacket(soundPkt)
}

// doorItemToBlock maps door item IDs to their block IDs.
var doorItemToBlock = map[int16]int16{
	324: 64, 330: 71, 427: 193, 428: 194, 429: 195, 430: 196, 431: 197,
}

// tryPlaceBlock validates and applies a block placement against a face.
func (s *Server) tryPlaceBlock(player *Player, x, y, z int32, face byte, itemID, damage int16, cursorX, cursorY byte) {
	placedID, isDoor := doorItemToBlock[itemID], false
	if placedID != 0 {
		isDoor = true
	} else {
		placedID = itemID
	}

	// Only block-range items can be placed.
	if placedID <= 0 || placedID > 255 {
		s.resyncHeldSlot(player)
		return
	}

	tx, ty, tz := faceOffset(x, y, z, face)
	if ty < 0 || ty > 255 {
		s.resyncHeldSlot(player)
		return
	}
	if !isReplaceableID(s.world.GetBlock(tx, ty, tz) >> 4) {
		s.resyncHeldSlot(player)
		return
	}
	if isDoor {
		// The upper half needs its own free block.
		if ty >= 254 || !isReplaceableID(s.world.GetBlock(tx, ty+1, tz)>>4) {
			s.resyncHeldSlot(player)
			return
		}
	}

	player.mu.Lock()
	yaw := player.Yaw
	player.mu.Unlock()
	meta := blockPlacementMeta(placedID, byte(damage), face, cursorX, cursorY, yaw)

	blockState := uint16(placedID)<<4 | uint16(meta)
	s.world.SetBlock(tx, ty, tz, blockState)
	s.broadcastBlockChange(tx, ty, tz, blockState)

	if isDoor {
		topState := uint16(placedID)<<4 | 8 // upper half bit
		s.world.SetBlock(tx, ty+1, tz, topState)
		s.broadcastBlockChange(tx, ty+1, tz, topState)
	}

	s.consumeHeldItem(player)
	log.Printf("Player %s placed block %d (from item %d) at (%d, %d, %d)", player.Username, placedID, itemID, tx, ty, tz)
}

// faceOffset returns the target block position when placing against a face.
// Face values: 0=bottom, 1=top, 2=north(-Z), 3=south(+Z), 4=west(-X), 5=east(+X)
func faceOffset(x, y, z int32, face byte) (int32, int32, int32) {
	switch face {
	case 0:
		return x, y - 1, z
	case 1:
		return x, y + 1, z
	case 2:
		return x, y, z - 1
	case 3:
		return x, y, z + 1
	case 4:
		return x - 1, y, z
	case 5:
		return x + 1, y, z
	default:
		return x, y + 1, z
	}
}

// yawToDirection converts a player yaw angle to a cardinal direction index.
// Returns: 0=south, 1=west, 2=north, 3=east (matches vanilla Minecraft).
func yawToDirection(yaw float32) int {
	return int(math.Floor(float64(yaw)*4.0/360.0+0.5)) & 3
}

// Face-indexed metadata tables for wall-mounted blocks. Index is the
// clicked face (0..5); the stored value is the block metadata.
var (
	torchMeta  = [6]byte{5, 5, 4, 3, 2, 1} // floor for top/bottom, else wall
	ladderMeta = [6]byte{2, 2, 2, 3, 4, 5}
	buttonMeta = [6]byte{0, 5, 4, 3, 2, 1}
	hopperMeta = [6]byte{0, 0, 2, 3, 4, 5}
)

// dirMeta maps a yawToDirection index to the facing metadata used by
// furnaces, chests, dispensers and droppers.
var dirMeta = [4]byte{2, 5, 3, 4}

// doorMeta maps a yawToDirection index to door hinge orientation.
var doorMeta = [4]byte{1, 2, 3, 0}

// stairDirMeta maps a yawToDirection index to stair orientation.
var stairDirMeta = [4]byte{2, 1, 3, 0}

// blockPlacementMeta computes the block metadata for a placed block based
// on its type, the item damage value, the face clicked, cursor position,
// and player yaw. Directional blocks encode orientation from the placement
// context; everything else passes the item damage through as metadata
// (wool colour, wood type, and so on).
func blockPlacementMeta(blockID int16, itemDamage byte, face byte, cursorX byte, cursorY byte, yaw float32) byte {
	dir := yawToDirection(yaw)
	if face > 5 {
		face = 1
	}

	switch blockID {
	case 64, 71, 193, 194, 195, 196, 197: // doors
		return doorMeta[dir]

	case 53, 67, 108, 109, 114, 128, 134, 135, 136, 156, 163, 164, 180: // stairs
		meta := stairDirMeta[dir]
		if face == 0 || (face != 1 && cursorY >= 8) {
			meta |= 4 // upside down
		}
		return meta

	case 50, 75, 76: // torch, redstone torch
		return torchMeta[face]

	case 69: // lever
		onAxisNS := dir == 0 || dir == 2
		switch face {
		case 0: // ceiling
			if onAxisNS {
				return 7
			}
			return 0
		case 1: // floor
			if onAxisNS {
				return 5
			}
			return 6
		default:
			return buttonMeta[face]
		}

	case 65, 68: // ladder, wall sign
		return ladderMeta[face]

	case 77, 143: // buttons
		return buttonMeta[face]

	case 61, 23, 158, 54, 146, 130: // furnace, dispenser, dropper, chests
		return dirMeta[dir]

	case 86, 91: // pumpkin, jack-o-lantern
		return byte((dir + 2) & 3)

	case 17, 162: // logs: wood type in the low bits, axis in bits 2-3
		woodType := itemDamage & 0x03
		switch face {
		case 2, 3:
			return woodType | 8 // Z axis
		case 4, 5:
			return woodType | 4 // X axis
		default:
			return woodType // Y axis
		}

	case 44, 126: // slabs: variant plus upper-half bit
		slabType := itemDamage & 0x07
		if face == 0 || (face != 1 && cursorY >= 8) {
			slabType |= 8
		}
		return slabType

	case 63: // standing sign: 16-direction rotation from yaw
		return byte(int(math.Floor(float64(yaw+180.0)*16.0/360.0+0.5)) & 15)

	case 154: // hopper
		return hopperMeta[face]

	case 145: // anvil
		return byte(dir & 3)

	case 93, 149: // repeater, comparator
		return byte(dir)

	default:
		return itemDamage & 0x0F
	}
}
