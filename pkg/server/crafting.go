package server

// Ingredient represents a required item in a crafting recipe slot.
type Ingredient struct {
	ID     int16 // Required item ID, -1 for empty slot
	Damage int16 // Required damage value, -1 for any
}

// CraftingRecipe is a compiled shaped recipe: a Width x Height window of
// ingredients that may sit anywhere in the crafting grid, with every cell
// outside the window required to be empty.
type CraftingRecipe struct {
	Width        int
	Height       int
	Ingredients  []Ingredient
	ResultID     int16
	ResultCount  byte
	ResultDamage int16
}

// compileRecipe turns a pattern (rows of key runes, ' ' = empty) into a
// CraftingRecipe. Patterns keep the recipe table readable; the compiled
// form is what the matcher works on.
func compileRecipe(pattern []string, key map[rune]Ingredient, resultID int16, count byte, resultDamage int16) CraftingRecipe {
	w := len(pattern[0])
	h := len(pattern)
	ings := make([]Ingredient, 0, w*h)
	for _, row := range pattern {
		for _, r := range row {
			if r == ' ' {
				ings = append(ings, Ingredient{ID: -1})
				continue
			}
			ings = append(ings, key[r])
		}
	}
	return CraftingRecipe{Width: w, Height: h, Ingredients: ings, ResultID: resultID, ResultCount: count, ResultDamage: resultDamage}
}

// toolSet emits the five tools of one material tier. The axe and hoe are
// asymmetric, so each gets a mirrored variant.
func toolSet(material int16, pickaxe, axe, shovel, sword, hoe int16) []CraftingRecipe {
	key := map[rune]Ingredient{'M': {material, -1}, 'S': {280, -1}}
	return []CraftingRecipe{
		compileRecipe([]string{"MMM", " S ", " S "}, key, pickaxe, 1, 0),
		compileRecipe([]string{"MM", "MS", " S"}, key, axe, 1, 0),
		compileRecipe([]string{"MM", "SM", "S "}, key, axe, 1, 0),
		compileRecipe([]string{"M", "S", "S"}, key, shovel, 1, 0),
		compileRecipe([]string{"M", "M", "S"}, key, sword, 1, 0),
		compileRecipe([]string{"MM", " S", " S"}, key, hoe, 1, 0),
		compileRecipe([]string{"MM", "S ", "S "}, key, hoe, 1, 0),
	}
}

// armorSet emits the four armor pieces of one material tier.
func armorSet(material int16, helmet, chestplate, leggings, boots int16) []CraftingRecipe {
	key := map[rune]Ingredient{'M': {material, -1}}
	return []CraftingRecipe{
		compileRecipe([]string{"MMM", "M M"}, key, helmet, 1, 0),
		compileRecipe([]string{"M M", "MMM", "MMM"}, key, chestplate, 1, 0),
		compileRecipe([]string{"MMM", "M M", "M M"}, key, leggings, 1, 0),
		compileRecipe([]string{"M M", "M M"}, key, boots, 1, 0),
	}
}

// craftingRecipes is the compiled recipe table, built once at startup.
var craftingRecipes = buildRecipes()

func buildRecipes() []CraftingRecipe {
	var rs []CraftingRecipe

	// Planks from logs: the plank variant follows the log's damage value.
	for damage := int16(0); damage <= 3; damage++ {
		rs = append(rs, compileRecipe([]string{"L"}, map[rune]Ingredient{'L': {17, damage}}, 5, 4, damage))
	}
	rs = append(rs,
		compileRecipe([]string{"L"}, map[rune]Ingredient{'L': {162, 0}}, 5, 4, 4),
		compileRecipe([]string{"L"}, map[rune]Ingredient{'L': {162, 1}}, 5, 4, 5),
	)

	planks := map[rune]Ingredient{'P': {5, -1}}
	oak := map[rune]Ingredient{'P': {5, 0}, 'S': {280, -1}}
	rs = append(rs,
		compileRecipe([]string{"P", "P"}, planks, 280, 4, 0), // sticks
		compileRecipe([]string{"PP", "PP"}, planks, 58, 1, 0), // crafting table
		compileRecipe([]string{"C", "S"}, map[rune]Ingredient{'C': {263, -1}, 'S': {280, -1}}, 50, 4, 0), // torch
		compileRecipe([]string{"CCC", "C C", "CCC"}, map[rune]Ingredient{'C': {4, -1}}, 61, 1, 0),        // furnace
		compileRecipe([]string{"PPP", "P P", "PPP"}, planks, 54, 1, 0),                                   // chest
		compileRecipe([]string{"WWW"}, map[rune]Ingredient{'W': {296, -1}}, 297, 1, 0),                   // bread
		compileRecipe([]string{"S S", "SSS", "S S"}, map[rune]Ingredient{'S': {280, -1}}, 65, 3, 0),      // ladder
		compileRecipe([]string{"P P", " P "}, planks, 281, 4, 0),                                         // bowl
		compileRecipe([]string{"I I", " I "}, map[rune]Ingredient{'I': {265, -1}}, 325, 1, 0),            // bucket
		compileRecipe([]string{"F", "S", "E"}, map[rune]Ingredient{'F': {318, -1}, 'S': {280, -1}, 'E': {288, -1}}, 262, 4, 0), // arrow
		compileRecipe([]string{"PPP", "PPP", " S "}, map[rune]Ingredient{'P': {5, -1}, 'S': {280, -1}}, 323, 3, 0),             // sign
		compileRecipe([]string{"PP", "PP", "PP"}, oak, 324, 3, 0),   // oak door
		compileRecipe([]string{"PSP", "PSP"}, oak, 85, 3, 0),        // oak fence
	)

	rs = append(rs, toolSet(5, 270, 271, 269, 268, 290)...)   // wood
	rs = append(rs, toolSet(4, 274, 275, 273, 272, 291)...)   // stone
	rs = append(rs, toolSet(265, 257, 258, 256, 267, 292)...) // iron
	rs = append(rs, toolSet(264, 278, 279, 277, 276, 293)...) // diamond
	rs = append(rs, toolSet(266, 285, 286, 284, 283, 294)...) // gold

	rs = append(rs, armorSet(334, 298, 299, 300, 301)...) // leather
	rs = append(rs, armorSet(265, 306, 307, 308, 309)...) // iron
	rs = append(rs, armorSet(266, 314, 315, 316, 317)...) // gold
	rs = append(rs, armorSet(264, 310, 311, 312, 313)...) // diamond

	return rs
}

// findRecipe checks the given crafting grid for a matching recipe.
// gridSize is 2 for the player inventory grid or 3 for the crafting table.
func findRecipe(grid []Slot, gridSize int) *CraftingRecipe {
	for i := range craftingRecipes {
		r := &craftingRecipes[i]
		if r.Width > gridSize || r.Height > gridSize {
			continue
		}
		for ox := 0; ox <= gridSize-r.Width; ox++ {
			for oy := 0; oy <= gridSize-r.Height; oy++ {
				if matchRecipeAt(grid, gridSize, r, ox, oy) {
					return r
				}
			}
		}
	}
	return nil
}

// matchRecipeAt checks whether r matches with its window placed at offset
// (ox, oy): every cell inside the window must satisfy its ingredient, every
// cell outside it must be empty.
func matchRecipeAt(grid []Slot, gridSize int, r *CraftingRecipe, ox, oy int) bool {
	for gy := 0; gy < gridSize; gy++ {
		for gx := 0; gx < gridSize; gx++ {
			actual := grid[gy*gridSize+gx]
			rx, ry := gx-ox, gy-oy
			inWindow := rx >= 0 && rx < r.Width && ry >= 0 && ry < r.Height

			if !inWindow {
				if actual.ItemID != -1 {
					return false
				}
				continue
			}
			want := r.Ingredients[ry*r.Width+rx]
			if want.ID == -1 {
				if actual.ItemID != -1 {
					return false
				}
				continue
			}
			if actual.ItemID != want.ID {
				return false
			}
			if want.Damage != -1 && actual.Damage != want.Damage {
				return false
			}
		}
	}
	return true
}

// craftResult returns the output slot a recipe produces, or an empty slot
// for nil.
func craftResult(r *CraftingRecipe) Slot {
	if r == nil {
		return Slot{ItemID: -1}
	}
	return Slot{ItemID: r.ResultID, Count: r.ResultCount, Damage: r.ResultDamage}
}

// updateCraftOutput2x2 refreshes the crafting output (Inventory[0]) from
// the player's 2x2 grid (Inventory[1-4]). Must be called with player.mu held.
func updateCraftOutput2x2(player *Player) {
	grid := make([]Slot, 4)
	copy(grid, player.Inventory[1:5])
	player.Inventory[0] = craftResult(findRecipe(grid, 2))
}

// consumeCraftIngredients2x2 decrements each non-empty ingredient in the
// 2x2 grid by 1. Must be called with player.mu held.
func consumeCraftIngredients2x2(player *Player) {
	for i := 1; i <= 4; i++ {
		consumeSlot(&player.Inventory[i])
	}
}

// updateCraftOutput3x3 refreshes the crafting table output from its 3x3
// grid. Must be called with player.mu held.
func updateCraftOutput3x3(player *Player) {
	player.CraftTableOutput = craftResult(findRecipe(player.CraftTableGrid[:], 3))
}

// consumeCraftIngredients3x3 decrements each non-empty ingredient in the
// 3x3 grid by 1. Must be called with player.mu held.
func consumeCraftIngredients3x3(player *Player) {
	for i := 0; i < 9; i++ {
		consumeSlot(&player.CraftTableGrid[i])
	}
}

func consumeSlot(s *Slot) {
	if s.ItemID == -1 {
		return
	}
	s.Count--
	if s.Count <= 0 {
		*s = Slot{ItemID: -1}
	}
}
