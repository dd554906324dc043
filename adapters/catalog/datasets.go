package catalog

import "fellingdate/domain/dendro"

// builtinDatasets returns the published empirical sapwood-count datasets
// shipped with the library. Histograms map observed sapwood-ring count to
// the number of samples showing that count.
func builtinDatasets() []dendro.SapwoodDataset {
	return []dendro.SapwoodDataset{
		{
			Name:     "Hollstein_1980",
			Region:   "South and Central Germany",
			Citation: "Hollstein, E. (1980). Mitteleuropäische Eichenchronologie. Mainz am Rhein.",
			Histogram: map[int]int{
				8: 4, 9: 7, 10: 13, 11: 21, 12: 32, 13: 41, 14: 48, 15: 52,
				16: 50, 17: 44, 18: 38, 19: 31, 20: 25, 21: 19, 22: 14,
				23: 11, 24: 8, 25: 6, 26: 5, 27: 4, 28: 3, 29: 2, 30: 2,
				31: 1, 32: 1, 34: 1, 36: 1,
			},
		},
		{
			Name:     "Wazny_1990",
			Region:   "Poland",
			Citation: "Wazny, T. (1990). Aufbau und Anwendung der Dendrochronologie für Eichenholz in Polen. Hamburg.",
			Histogram: map[int]int{
				9: 2, 10: 4, 11: 8, 12: 12, 13: 17, 14: 21, 15: 23, 16: 22,
				17: 19, 18: 16, 19: 13, 20: 11, 21: 9, 22: 7, 23: 5, 24: 4,
				25: 3, 26: 3, 27: 2, 28: 2, 29: 1, 30: 1, 32: 1,
			},
		},
		{
			Name:     "Pilcher_1987",
			Region:   "Northern France",
			Citation: "Pilcher, J.R. (1987). A 700 year dating chronology for northern France. BAR International Series 333.",
			Histogram: map[int]int{
				12: 2, 13: 3, 14: 5, 15: 7, 16: 9, 17: 11, 18: 12, 19: 12,
				20: 11, 21: 10, 22: 8, 23: 7, 24: 5, 25: 4, 26: 3, 27: 2,
				28: 2, 29: 1, 30: 1, 31: 1,
			},
		},
		{
			Name:     "Brathen_1982",
			Region:   "Western Sweden",
			Citation: "Brathen, A. (1982). Dendrokronologisk serie från västra Sverige. Riksantikvarieämbetet.",
			Histogram: map[int]int{
				10: 2, 11: 3, 12: 5, 13: 7, 14: 9, 15: 10, 16: 10, 17: 9,
				18: 8, 19: 7, 20: 6, 21: 5, 22: 4, 23: 3, 24: 2, 25: 2,
				26: 1, 27: 1, 28: 1,
			},
		},
		{
			Name:     "Miles_1997_WMidlands",
			Region:   "England, West Midlands",
			Citation: "Miles, D. (1997). The interpretation, presentation and use of tree-ring dates. Vernacular Architecture 28.",
			Histogram: map[int]int{
				11: 3, 12: 6, 13: 10, 14: 15, 15: 19, 16: 22, 17: 23, 18: 22,
				19: 20, 20: 17, 21: 14, 22: 11, 23: 9, 24: 7, 25: 5, 26: 4,
				27: 3, 28: 2, 29: 2, 30: 1, 31: 1, 33: 1,
			},
		},
		{
			Name:     "Sohar_2012_ELL_c",
			Region:   "Eastern Estonia, Latvia, Lithuania",
			Citation: "Sohar, K., Vitas, A. & Läänelaid, A. (2012). Sapwood estimates of pedunculate oak in the eastern Baltic. Dendrochronologia 30.",
			Histogram: map[int]int{
				6: 2, 7: 5, 8: 9, 9: 14, 10: 18, 11: 20, 12: 19, 13: 17,
				14: 14, 15: 11, 16: 8, 17: 6, 18: 4, 19: 3, 20: 2, 21: 1,
				22: 1, 24: 1,
			},
		},
		{
			Name:     "vanDaalen_Norway",
			Region:   "Norway",
			Citation: "van Daalen, S. (unpublished). Sapwood counts from Norwegian oak timbers.",
			Histogram: map[int]int{
				8: 2, 9: 4, 10: 6, 11: 9, 12: 11, 13: 12, 14: 12, 15: 11,
				16: 9, 17: 8, 18: 6, 19: 5, 20: 4, 21: 3, 22: 2, 23: 1,
				24: 1, 26: 1,
			},
		},
	}
}
