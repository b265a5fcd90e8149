package server

import (
	"bytes"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/StoreStation/VibeShitCraft/pkg/protocol"
)

// ItemEntity represents an item dropped on the ground.
type ItemEntity struct {
	EntityID   int32
	ItemID     int16
	Damage     int16
	Count      byte
	X, Y, Z    float64
	VX, VY, VZ float64
	SpawnTime  time.Time
}

// MobEntity represents a living entity (mob) in the world.
type MobEntity struct {
	EntityID   int32
	MobType    byte // Minecraft mob type ID (e.g., 50=Creeper, 90=Pig)
	X, Y, Z    float64
	VX, VY, VZ float64
	Yaw, Pitch float32
	HeadPitch  float32
	OnGround   bool
	// AIFunc is an optional AI callback invoked each tick. Can be nil.
	AIFunc func(mob *MobEntity, s *Server)
}

// EntityTrackingRange is how far (in blocks) a player can be from an entity
// and still be sent its spawn/movement packets.
const EntityTrackingRange = 80.0

// shouldTrack reports whether the entity at (ex, ey, ez) is close enough to
// viewer to be worth sending.
func (s *Server) shouldTrack(viewer *Player, ex, ey, ez float64) bool {
	dx := ex - viewer.X
	dy := ey - viewer.Y
	dz := ez - viewer.Z
	return dx*dx+dy*dy+dz*dz <= EntityTrackingRange*EntityTrackingRange
}

// updateEntityTracking reconciles viewer's tracked-entity set against the
// current positions of every other player and mob: entities that came into
// range get spawned on the viewer's client, entities that left range get
// destroyed there. Called after movement, teleports, and chunk updates.
func (s *Server) updateEntityTracking(viewer *Player) {
	viewer.mu.Lock()
	if viewer.trackedEntities == nil {
		viewer.trackedEntities = make(map[int32]bool)
	}
	viewer.mu.Unlock()

	s.mu.RLock()
	others := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		if p.EntityID != viewer.EntityID {
			others = append(others, p)
		}
	}
	mobs := make([]*MobEntity, 0, len(s.mobEntities))
	for _, m := range s.mobEntities {
		mobs = append(mobs, m)
	}
	s.mu.RUnlock()

	for _, other := range others {
		other.mu.Lock()
		ex, ey, ez := other.X, other.Y, other.Z
		other.mu.Unlock()
		o := other
		s.reconcileTracking(viewer, o.EntityID, s.shouldTrack(viewer, ex, ey, ez), func() { s.sendSpawnPlayer(viewer, o) })
	}
	for _, mob := range mobs {
		m := mob
		s.reconcileTracking(viewer, m.EntityID, s.shouldTrack(viewer, m.X, m.Y, m.Z), func() { s.sendMobToPlayer(viewer, m) })
	}
}

// reconcileTracking applies one entity's tracking transition for viewer,
// sending the spawn or destroy packet when the state actually flips.
func (s *Server) reconcileTracking(viewer *Player, eid int32, inRange bool, spawn func()) {
	viewer.mu.Lock()
	tracked := viewer.trackedEntities[eid]
	if inRange == tracked {
		viewer.mu.Unlock()
		return
	}
	if inRange {
		viewer.trackedEntities[eid] = true
	} else {
		delete(viewer.trackedEntities, eid)
	}
	viewer.mu.Unlock()

	if inRange {
		spawn()
		return
	}
	s.sendPacket(viewer, protocol.MarshalPacket(0x13, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, 1)
		protocol.WriteVarInt(w, eid)
	}))
}

func (s *Server) entityPhysicsLoop() {
	ticker := time.NewTicker(50 * time.Millisecond) // 20 ticks per second
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tickEntityPhysics()
		}
	}
}

// checkEntityCollision checks whether the given AABB intersects any solid block.
func (s *Server) checkEntityCollision(x, y, z, width, height float64) bool {
	minX := int32(math.Floor(x - width/2))
	maxX := int32(math.Floor(x + width/2))
	minY := int32(math.Floor(y))
	maxY := int32(math.Floor(y + height))
	minZ := int32(math.Floor(z - width/2))
	maxZ := int32(math.Floor(z + width/2))

	for bx := minX; bx <= maxX; bx++ {
		for by := minY; by <= maxY; by++ {
			for bz := minZ; bz <= maxZ; bz++ {
				if s.world.GetBlock(bx, by, bz)>>4 != 0 {
					return true
				}
			}
		}
	}
	return false
}

// Physics constants shared by items and mobs.
const (
	entityGravity    = 0.04
	entityDrag       = 0.98
	entityGroundDrag = 0.588 // 0.98 * 0.6 slipperiness
)

// stepAxis advances one axis by v if the resulting AABB is free, returning
// the new position and whether the axis was blocked.
func (s *Server) stepAxis(x, y, z, width, height float64, axis int, v float64) (float64, bool) {
	nx, ny, nz := x, y, z
	var cur float64
	switch axis {
	case 0:
		nx += v
		cur = nx
	case 1:
		ny += v
		cur = ny
	default:
		nz += v
		cur = nz
	}
	if s.checkEntityCollision(nx, ny, nz, width, height) {
		switch axis {
		case 0:
			return x, true
		case 1:
			return y, true
		default:
			return z, true
		}
	}
	return cur, false
}

// dampen zeroes out negligible velocity so resting entities stop jittering.
func dampen(v float64) float64 {
	if math.Abs(v) < 0.001 {
		return 0
	}
	return v
}

func (s *Server) tickEntityPhysics() {
	type moved struct {
		entityID   int32
		x, y, z    float64
		yaw, pitch float32
		onGround   bool
	}
	var updates []moved

	s.mu.Lock()

	for _, item := range s.entities {
		const w, h = 0.25, 0.25

		item.VY -= entityGravity

		var blocked bool
		item.X, blocked = s.stepAxis(item.X, item.Y, item.Z, w, h, 0, item.VX)
		if blocked {
			item.VX = 0
		}

		onGround := false
		item.Y, blocked = s.stepAxis(item.X, item.Y, item.Z, w, h, 1, item.VY)
		if blocked {
			if item.VY < 0 {
				onGround = true
			}
			item.VY *= -0.5 // bounce
			if math.Abs(item.VY) < 0.1 {
				item.VY = 0
				if onGround {
					// Snap to the block boundary so resting items don't hover.
					item.Y = math.Floor(item.Y)
				}
			}
		}

		item.Z, blocked = s.stepAxis(item.X, item.Y, item.Z, w, h, 2, item.VZ)
		if blocked {
			item.VZ = 0
		}

		f := entityDrag
		if onGround {
			f = entityGroundDrag
		}
		item.VX = dampen(item.VX * f)
		item.VY = dampen(item.VY * entityDrag)
		item.VZ = dampen(item.VZ * f)

		updates = append(updates, moved{item.EntityID, item.X, item.Y, item.Z, 0, 0, true})
	}

	for _, mob := range s.mobEntities {
		const w, h = 0.6, 1.8

		if mob.AIFunc != nil {
			mob.AIFunc(mob, s)
		}

		mob.VY -= entityGravity

		var blocked bool
		mob.X, blocked = s.stepAxis(mob.X, mob.Y, mob.Z, w, h, 0, mob.VX)
		if blocked {
			mob.VX = 0
		}

		mob.OnGround = false
		mob.Y, blocked = s.stepAxis(mob.X, mob.Y, mob.Z, w, h, 1, mob.VY)
		if blocked {
			if mob.VY < 0 {
				mob.OnGround = true
				mob.Y = math.Floor(mob.Y)
			}
			mob.VY = 0
		}

		mob.Z, blocked = s.stepAxis(mob.X, mob.Y, mob.Z, w, h, 2, mob.VZ)
		if blocked {
			mob.VZ = 0
		}

		f := entityDrag
		if mob.OnGround {
			f = entityGroundDrag
		}
		mob.VX = dampen(mob.VX * f)
		mob.VY = dampen(mob.VY * entityDrag)
		mob.VZ = dampen(mob.VZ * f)

		updates = append(updates, moved{mob.EntityID, mob.X, mob.Y, mob.Z, mob.Yaw, mob.Pitch, mob.OnGround})
	}

	s.mu.Unlock()

	for _, m := range updates {
		s.broadcastEntityTeleportByID(m.entityID, m.x, m.y, m.z, m.yaw, m.pitch, m.onGround)
	}
}

// SpawnItem creates an item entity at the given position and broadcasts it.
func (s *Server) SpawnItem(x, y, z float64, vx, vy, vz float64, itemID int16, damage int16, count byte) {
	s.mu.Lock()
	eid := s.nextEID
	s.nextEID++

	item := &ItemEntity{
		EntityID:  eid,
		ItemID:    itemID,
		Damage:    damage,
		Count:     count,
		X:         x,
		Y:         y,
		Z:         z,
		VX:        vx,
		VY:        vy,
		VZ:        vz,
		SpawnTime: time.Now(),
	}
	s.entities[eid] = item
	s.mu.Unlock()

	s.broadcastSpawnItem(item)
}

// itemSpawnPackets builds the spawn-object, velocity, and metadata packets
// that make an item stack appear on a client.
func itemSpawnPackets(item *ItemEntity) []*protocol.Packet {
	spawnObj := protocol.MarshalPacket(0x0E, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, item.EntityID)
		protocol.WriteByte(w, 2) // Type: Item Stack
		protocol.WriteInt32(w, int32(item.X*32))
		protocol.WriteInt32(w, int32(item.Y*32))
		protocol.WriteInt32(w, int32(item.Z*32))
		protocol.WriteByte(w, 0)  // Pitch
		protocol.WriteByte(w, 0)  // Yaw
		protocol.WriteInt32(w, 0) // Object data
	})
	velocity := protocol.MarshalPacket(0x12, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, item.EntityID)
		protocol.WriteInt16(w, int16(item.VX*8000))
		protocol.WriteInt16(w, int16(item.VY*8000))
		protocol.WriteInt16(w, int16(item.VZ*8000))
	})
	metadata := protocol.MarshalPacket(0x1C, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, item.EntityID)
		// Item stack metadata: index 10, type 5 (slot).
		// Header byte: (type << 5) | (index & 0x1F)
		protocol.WriteByte(w, (5<<5)|10)
		protocol.WriteSlotData(w, item.ItemID, item.Count, item.Damage)
		protocol.WriteByte(w, 0x7F) // Terminator
	})
	return []*protocol.Packet{spawnObj, velocity, metadata}
}

func (s *Server) broadcastSpawnItem(item *ItemEntity) {
	pkts := itemSpawnPackets(item)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.players {
		for _, pkt := range pkts {
			s.sendPacket(p, pkt)
		}
	}
}

// SpawnMob creates a mob entity at the given position and sends it to every
// player in tracking range.
func (s *Server) SpawnMob(x, y, z float64, mobType byte) {
	s.mu.Lock()
	eid := s.nextEID
	s.nextEID++

	mob := &MobEntity{
		EntityID: eid,
		MobType:  mobType,
		X:        x,
		Y:        y,
		Z:        z,
	}
	s.mobEntities[eid] = mob

	players := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	s.mu.Unlock()

	for _, p := range players {
		if !s.shouldTrack(p, x, y, z) {
			continue
		}
		p.mu.Lock()
		if p.trackedEntities == nil {
			p.trackedEntities = make(map[int32]bool)
		}
		p.trackedEntities[eid] = true
		p.mu.Unlock()
		s.sendMobToPlayer(p, mob)
	}
	log.Printf("Spawned mob type %d (EID: %d) at (%.1f, %.1f, %.1f)", mobType, eid, x, y, z)
}

// hostileMobTypes are the mob IDs the natural spawner picks from.
var hostileMobTypes = []byte{51, 52, 54} // skeleton, spider, zombie

// mobSpawnLoop periodically tries to spawn hostile mobs in dark spots near
// players, the classic rule: a voxel only spawns monsters when its computed
// light (both channels) is 7 or less. This is the serving side of the
// lighting engine's output — torch-lit areas stay safe because their block
// light is above the threshold.
func (s *Server) mobSpawnLoop() {
	const (
		maxMobs        = 20
		attemptsPerTry = 8
		spawnLightMax  = 7
	)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.RLock()
			if len(s.mobEntities) >= maxMobs {
				s.mu.RUnlock()
				continue
			}
			players := make([]*Player, 0, len(s.players))
			for _, p := range s.players {
				players = append(players, p)
			}
			s.mu.RUnlock()

			for _, p := range players {
				p.mu.Lock()
				px, py, pz := p.X, p.Y, p.Z
				p.mu.Unlock()

				for i := 0; i < attemptsPerTry; i++ {
					x := int32(px) + rand.Int31n(33) - 16
					z := int32(pz) + rand.Int31n(33) - 16
					y := int32(py) + rand.Int31n(9) - 4
					if !s.canHostileSpawnAt(x, y, z, spawnLightMax) {
						continue
					}
					mobType := hostileMobTypes[rand.Intn(len(hostileMobTypes))]
					s.SpawnMob(float64(x)+0.5, float64(y), float64(z)+0.5, mobType)
					break
				}
			}
		}
	}
}

// canHostileSpawnAt checks the standing space and the light level at a
// candidate spawn block. Unlit (not yet streamed) chunks never spawn.
func (s *Server) canHostileSpawnAt(x, y, z int32, lightMax uint8) bool {
	// Solid floor, two blocks of air to stand in.
	if s.world.GetBlock(x, y-1, z)>>4 == 0 {
		return false
	}
	if s.world.GetBlock(x, y, z)>>4 != 0 || s.world.GetBlock(x, y+1, z)>>4 != 0 {
		return false
	}
	blockLight, skyLight, ok := s.world.LightLevels(x, y, z)
	if !ok {
		return false
	}
	return blockLight <= lightMax && skyLight <= lightMax
}

func (s *Server) spawnEntitiesForPlayer(player *Player) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entity := range s.entities {
		s.sendItemToPlayer(player, entity)
	}
}

func (s *Server) sendItemToPlayer(player *Player, item *ItemEntity) {
	for _, pkt := range itemSpawnPackets(item) {
		s.sendPacket(player, pkt)
	}
}

func (s *Server) spawnMobEntitiesForPlayer(player *Player) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, mob := range s.mobEntities {
		s.sendMobToPlayer(player, mob)
	}
}

func (s *Server) sendMobToPlayer(player *Player, mob *MobEntity) {
	s.sendPacket(player, protocol.MarshalPacket(0x0F, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, mob.EntityID)
		protocol.WriteByte(w, mob.MobType)
		protocol.WriteInt32(w, int32(mob.X*32))
		protocol.WriteInt32(w, int32(mob.Y*32))
		protocol.WriteInt32(w, int32(mob.Z*32))
		protocol.WriteByte(w, byte(mob.Yaw*256/360))
		protocol.WriteByte(w, byte(mob.Pitch*256/360))
		protocol.WriteByte(w, byte(mob.HeadPitch*256/360))
		protocol.WriteInt16(w, int16(mob.VX*8000))
		protocol.WriteInt16(w, int16(mob.VY*8000))
		protocol.WriteInt16(w, int16(mob.VZ*8000))
		protocol.WriteByte(w, 0x7F) // Metadata terminator (no extra metadata)
	}))
}

func (s *Server) broadcastCollectItem(collectedID, collectorID int32) {
	s.broadcastPacket(protocol.MarshalPacket(0x0D, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, collectedID)
		protocol.WriteVarInt(w, collectorID)
	}))
}

func (s *Server) itemPickupLoop(player *Player, stop chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.RLock()
			if len(s.entities) == 0 {
				s.mu.RUnlock()
				continue
			}
			entities := make([]*ItemEntity, 0, len(s.entities))
			for _, e := range s.entities {
				entities = append(entities, e)
			}
			s.mu.RUnlock()

			player.mu.Lock()
			px, py, pz := player.X, player.Y, player.Z
			isDead := player.IsDead
			player.mu.Unlock()

			if isDead {
				continue
			}

			for _, e := range entities {
				// Fresh drops have a 1 second pickup delay.
				if time.Since(e.SpawnTime) < time.Second {
					continue
				}
				dx, dy, dz := e.X-px, e.Y-py, e.Z-pz
				if dx*dx+dy*dy+dz*dz >= 4.0 { // 2 block pickup range
					continue
				}

				player.mu.Lock()
				slotIndex, picked := addItemToInventory(player, e.ItemID, e.Damage, e.Count)
				if picked {
					s.sendSlotLocked(player, slotIndex)
				}
				player.mu.Unlock()
				if !picked {
					continue
				}

				// Another player's pickup loop may have raced us to it.
				s.mu.Lock()
				_, stillThere := s.entities[e.EntityID]
				if stillThere {
					delete(s.entities, e.EntityID)
				}
				s.mu.Unlock()
				if !stillThere {
					continue
				}

				s.broadcastCollectItem(e.EntityID, player.EntityID)
				s.broadcastDestroyEntity(e.EntityID)
				log.Printf("Player %s picked up item %d:%d", player.Username, e.ItemID, e.Damage)
				// The pickup may have landed in the held hotbar slot; let
				// others see the updated item.
				s.broadcastHeldItem(player)
			}
		}
	}
}
