package services

// Built-in rate tables, in euros per unit (m², unit, linear metre or lump
// sum, see Category.Info). Keys are normalised when the book is built.

var wizardTables = map[Category]RateTable{
	CategoryBaseConstruction: {
		"default":        1800,
		"traditionnelle": 1800,
		"ossature-bois":  1700,
		"contemporaine":  2200,
		"passive":        2600,
		"haut-de-gamme":  3000,
	},
	CategoryBaseRenovation: {
		"default":  900,
		"legere":   500,
		"moyenne":  900,
		"complete": 1200,
		"lourde":   1400,
	},
	CategoryBaseExtension: {
		"default":      1600,
		"plain-pied":   1600,
		"etage":        1900,
		"veranda":      1200,
		"surelevation": 2100,
	},
	CategoryRoofing: {
		"tuile-terre-cuite": 130,
		"tuile-beton":       95,
		"ardoise":           210,
		"zinc":              160,
		"bac-acier":         75,
		"toiture-terrasse":  140,
		"chaume":            190,
	},
	CategoryFloorTile: {
		"gres-cerame":      65,
		"faience":          55,
		"carreaux-ciment":  85,
		"mosaique":         95,
		"pierre-naturelle": 120,
	},
	CategoryParquet: {
		"stratifie":   35,
		"bambou":      60,
		"contrecolle": 70,
		"massif":      90,
	},
	CategorySoftFloor: {
		"moquette":   30,
		"vinyle":     40,
		"linoleum":   45,
		"beton-cire": 110,
	},
	CategoryPaint: {
		"standard":   25,
		"ecologique": 32,
		"premium":    35,
		"wallpaper":  35,
		"decorative": 45,
	},
	CategoryInsulation: {
		"laine-de-verre":     20,
		"polystyrene":        22,
		"laine-de-roche":     25,
		"ouate-de-cellulose": 30,
		"polyurethane":       35,
		"fibre-de-bois":      40,
		"liege":              55,
	},
	CategoryFacade: {
		"enduit":            45,
		"bardage-bois":      85,
		"bardage-composite": 110,
		"brique":            130,
		"ite":               150,
		"pierre":            180,
	},
	CategoryHeating: {
		"poele-bois":             30,
		"radiateurs-electriques": 35,
		"chaudiere-gaz":          55,
		"plancher-chauffant":     75,
		"chaudiere-granules":     85,
		"pompe-a-chaleur":        95,
	},
	CategoryElectrical: {
		"mise-aux-normes": 60,
		"basique":         80,
		"standard":        110,
		"domotique":       160,
	},
	CategoryPlumbing: {
		"basique":  60,
		"standard": 85,
		"complete": 120,
	},
	CategoryAirConditioning: {
		"monosplit":  45,
		"multisplit": 70,
		"gainable":   95,
	},
	CategoryVentilation: {
		"vmc-simple-flux": 2500,
		"vmc-hygro":       3200,
		"vmc-double-flux": 6500,
	},
	CategoryKitchen: {
		"basique":  5000,
		"standard": 10000,
		"premium":  20000,
		"luxe":     35000,
	},
	CategoryBathroomUnit: {
		"basique":  2500,
		"standard": 4000,
		"premium":  6000,
		"luxe":     10000,
	},
	CategoryBathroomM2: {
		"basique":  800,
		"standard": 1200,
		"premium":  1800,
		"luxe":     2500,
	},
	CategoryWindow: {
		"pvc":       450,
		"aluminium": 700,
		"bois":      800,
		"bois-alu":  950,
	},
	CategoryDoor: {
		"interieure":  350,
		"entree":      1800,
		"garage":      2200,
		"baie-vitree": 2800,
	},
	CategoryPool: {
		"hors-sol":       8000,
		"coque":          25000,
		"enterree-beton": 35000,
		"naturelle":      45000,
	},
	CategoryAnnex: {
		"portail":     2500,
		"abri-jardin": 3500,
		"carport":     6000,
		"jacuzzi":     8000,
	},
	CategoryTerrace: {
		"beton":     70,
		"carrelage": 100,
		"bois":      120,
		"composite": 150,
	},
	CategoryFence: {
		"grillage": 35,
		"bois":     80,
		"pvc":      95,
		"maconnee": 180,
	},
	CategoryLandscaping: {
		"engazonnement": 12,
		"potager":       25,
		"paysager":      45,
	},
	CategoryDriveway: {
		"gravier": 30,
		"enrobe":  60,
		"pave":    90,
	},
	CategoryEcoOption: {
		"borne-recharge":         1500,
		"recuperation-eau-pluie": 4500,
		"chauffe-eau-solaire":    5000,
		"toiture-vegetalisee":    9000,
		"panneaux-solaires":      12000,
		"geothermie":             20000,
	},
}

// catalogDelta lists where the back-office calculation tables depart from the
// wizard tables. A negative value removes the type from the catalog book.
var catalogDelta = map[Category]RateTable{
	CategoryRoofing: {
		"tuile-terre-cuite": 120,
		"tuile-beton":       90,
		"ardoise":           240,
		"zinc":              170,
		"bac-acier":         70,
		"toiture-terrasse":  150,
		"chaume":            -1,
		"bardeau-bitume":    60,
	},
	CategoryFacade: {
		"enduit": 50,
	},
	CategoryWindow: {
		"pvc": 500,
	},
	CategoryHeating: {
		"pompe-a-chaleur": 100,
	},
}

func catalogTables() map[Category]RateTable {
	out := make(map[Category]RateTable, len(wizardTables))
	for c, t := range wizardTables {
		nt := make(RateTable, len(t))
		for k, v := range t {
			nt[k] = v
		}
		out[c] = nt
	}
	for c, delta := range catalogDelta {
		for k, v := range delta {
			if v < 0 {
				delete(out[c], k)
				continue
			}
			out[c][k] = v
		}
	}
	return out
}
