package survey

import "fmt"

// Built-in RAND-36 (ES) dataset. Point values are pre-mapped to 0–100 so each
// scale score is simply the mean of its answered items. Reversed items (e.g.
// S25 "desanimado/a y triste") carry inverted values so that 100 always means
// better health.

// Scale keys for the eight health dimensions.
const (
	ScalePF = "PF" // Función física
	ScaleRP = "RP" // Rol físico
	ScaleRE = "RE" // Rol emocional
	ScaleSF = "SF" // Función social
	ScaleBP = "BP" // Dolor corporal
	ScaleGH = "GH" // Salud general
	ScaleVT = "VT" // Vitalidad
	ScaleMH = "MH" // Salud mental
)

// ScaleKeys is the canonical presentation order for scale columns in exports.
// Keep it stable: CSV headers and PDF rows depend on it.
var ScaleKeys = []string{ScalePF, ScaleRP, ScaleRE, ScaleSF, ScaleBP, ScaleGH, ScaleVT, ScaleMH}

// yesNo: binary role-limitation items. "Sí" means limited, so it scores 0.
func yesNo() []Option {
	return []Option{{Label: "Sí", Value: 0}, {Label: "No", Value: 100}}
}

// limited3: physical-function items with three levels of limitation.
func limited3() []Option {
	return []Option{
		{Label: "Sí, mucho", Value: 0},
		{Label: "Sí, un poco", Value: 50},
		{Label: "No", Value: 100},
	}
}

// frequency6: six-step frequency items. reversed=true for items where feeling
// that way more often means worse health.
func frequency6(reversed bool) []Option {
	values := []float64{100, 80, 60, 40, 20, 0}
	if reversed {
		values = []float64{0, 20, 40, 60, 80, 100}
	}
	labels := []string{"Siempre", "Casi siempre", "A menudo", "Algunas veces", "Rara vez", "Nunca"}
	opts := make([]Option, len(labels))
	for i, l := range labels {
		opts[i] = Option{Label: l, Value: values[i]}
	}
	return opts
}

// agreement5: five-step agreement items. reversed=true when agreeing means
// worse health ("Espero que mi salud empeore").
func agreement5(reversed bool) []Option {
	values := []float64{100, 75, 50, 25, 0}
	if reversed {
		values = []float64{0, 25, 50, 75, 100}
	}
	labels := []string{
		"Totalmente de acuerdo", "De acuerdo", "Ni de acuerdo ni en desacuerdo",
		"En desacuerdo", "Totalmente en desacuerdo",
	}
	opts := make([]Option, len(labels))
	for i, l := range labels {
		opts[i] = Option{Label: l, Value: values[i]}
	}
	return opts
}

func feltItem(id, feeling string, reversed bool, scale string) Item {
	return Item{
		ID:      id,
		Label:   fmt.Sprintf("¿Con qué frecuencia te sentiste %s?", feeling),
		Options: frequency6(reversed),
		Scale:   scale,
	}
}

// Default returns a fresh copy of the built-in questionnaire. Callers may
// mutate the returned value freely (e.g. replace it with an imported
// override) without affecting later calls.
func Default() *Questionnaire {
	items := []Item{
		{ID: "S1", Label: "En general, dirías que tu salud es:", Options: []Option{
			{Label: "Excelente", Value: 100}, {Label: "Muy buena", Value: 75},
			{Label: "Buena", Value: 50}, {Label: "Regular", Value: 25}, {Label: "Mala", Value: 0},
		}, Scale: ScaleGH},

		// S2 is the health-trend item. It is shown but never scored: it
		// belongs to no scale and must not appear in any scale's itemIds.
		{ID: "S2", Label: "Comparada con hace un año, ¿cómo dirías que es tu salud ahora?", Options: []Option{
			{Label: "Mucho mejor", Value: 100}, {Label: "Algo mejor", Value: 75},
			{Label: "Igual", Value: 50}, {Label: "Algo peor", Value: 25}, {Label: "Mucho peor", Value: 0},
		}},
	}

	// S3–S12: physical function.
	activities := []string{
		"actividades vigorosas (p. ej., correr, levantar objetos pesados)",
		"actividades moderadas (p. ej., mover una mesa, pasar la aspiradora)",
		"levantar o llevar bolsas de la compra",
		"subir varios tramos de escaleras",
		"subir un tramo de escaleras",
		"agacharte, arrodillarte o inclinarte",
		"caminar más de 1 kilómetro",
		"caminar varios cientos de metros",
		"caminar 100 metros",
		"bañarte o vestirte por ti mismo/a",
	}
	for i, txt := range activities {
		items = append(items, Item{
			ID:      fmt.Sprintf("S%d", 3+i),
			Label:   fmt.Sprintf("¿Tu salud te limita en %s?", txt),
			Options: limited3(),
			Scale:   ScalePF,
		})
	}

	items = append(items,
		// S13–S16: physical role limitation.
		Item{ID: "S13", Label: "¿Reduciste tiempo en trabajo/actividades por problemas físicos?", Options: yesNo(), Scale: ScaleRP},
		Item{ID: "S14", Label: "¿Conseguiste menos de lo deseado por salud física?", Options: yesNo(), Scale: ScaleRP},
		Item{ID: "S15", Label: "¿Fue difícil realizar trabajo/actividades por salud física?", Options: yesNo(), Scale: ScaleRP},
		Item{ID: "S16", Label: "¿Limitado/a en el tipo de actividades por salud física?", Options: yesNo(), Scale: ScaleRP},

		// S17–S19: emotional role limitation.
		Item{ID: "S17", Label: "¿Reduciste tiempo por problemas emocionales?", Options: yesNo(), Scale: ScaleRE},
		Item{ID: "S18", Label: "¿Lograste menos por problemas emocionales?", Options: yesNo(), Scale: ScaleRE},
		Item{ID: "S19", Label: "¿Trabajaste con menos cuidado por problemas emocionales?", Options: yesNo(), Scale: ScaleRE},

		Item{ID: "S20", Label: "Interferencia de salud física/emocional en actividades sociales", Options: []Option{
			{Label: "Muchísimo", Value: 0}, {Label: "Mucho", Value: 25}, {Label: "Algo", Value: 50},
			{Label: "Un poco", Value: 75}, {Label: "Nada", Value: 100},
		}, Scale: ScaleSF},

		Item{ID: "S21", Label: "¿Cuánto dolor corporal has tenido?", Options: []Option{
			{Label: "Ninguno", Value: 100}, {Label: "Muy leve", Value: 80}, {Label: "Leve", Value: 60},
			{Label: "Moderado", Value: 40}, {Label: "Severo", Value: 20}, {Label: "Muy severo", Value: 0},
		}, Scale: ScaleBP},
		Item{ID: "S22", Label: "¿En qué medida el dolor dificultó tu trabajo habitual?", Options: []Option{
			{Label: "Nada", Value: 100}, {Label: "Muy poco", Value: 80}, {Label: "Algo", Value: 60},
			{Label: "Bastante", Value: 40}, {Label: "Mucho", Value: 20},
		}, Scale: ScaleBP},

		feltItem("S23", "lleno/a de vitalidad", false, ScaleVT),

		// Mental health block. S25 and S28 name negative feelings, so their
		// values are reversed.
		feltItem("S24", "tranquilo/a y en paz", false, ScaleMH),
		feltItem("S25", "desanimado/a y triste", true, ScaleMH),
		feltItem("S26", "calmado/a y sosegado/a", false, ScaleMH),
		feltItem("S28", "decaído/a", true, ScaleMH),
		feltItem("S30", "feliz", false, ScaleMH),

		// Remaining vitality items. S29 ("cansado/a") is reversed.
		feltItem("S27", "con mucha energía", false, ScaleVT),
		feltItem("S29", "cansado/a", true, ScaleVT),
		feltItem("S31", "lleno/a de energía", false, ScaleVT),

		Item{ID: "S32", Label: "Interferencia en actividades sociales (visitar a amigos/familia)", Options: frequency6(true), Scale: ScaleSF},

		Item{ID: "S33", Label: "Me pongo enfermo/a más fácilmente que otras personas", Options: agreement5(true), Scale: ScaleGH},
		Item{ID: "S34", Label: "Estoy tan sano/a como cualquiera que conozco", Options: agreement5(false), Scale: ScaleGH},
		Item{ID: "S35", Label: "Espero que mi salud empeore", Options: agreement5(true), Scale: ScaleGH},
		Item{ID: "S36", Label: "Mi salud es excelente", Options: agreement5(false), Scale: ScaleGH},
	)

	return &Questionnaire{
		Title:        "SF-36/RAND-36 (ES) – Cuestionario de Salud",
		Instructions: "Responde según tu situación en las últimas 4 semanas.",
		Items:        items,
		Scales: map[string]ScaleDef{
			ScalePF: {Label: "Función física (PF)", ItemIDs: []string{"S3", "S4", "S5", "S6", "S7", "S8", "S9", "S10", "S11", "S12"}},
			ScaleRP: {Label: "Rol físico (RP)", ItemIDs: []string{"S13", "S14", "S15", "S16"}},
			ScaleRE: {Label: "Rol emocional (RE)", ItemIDs: []string{"S17", "S18", "S19"}},
			ScaleSF: {Label: "Función social (SF)", ItemIDs: []string{"S20", "S32"}},
			ScaleBP: {Label: "Dolor corporal (BP)", ItemIDs: []string{"S21", "S22"}},
			ScaleGH: {Label: "Salud general (GH)", ItemIDs: []string{"S1", "S33", "S34", "S35", "S36"}},
			ScaleVT: {Label: "Vitalidad (VT)", ItemIDs: []string{"S23", "S27", "S29", "S31"}},
			ScaleMH: {Label: "Salud mental (MH)", ItemIDs: []string{"S24", "S25", "S26", "S28", "S30"}},
		},
	}
}
