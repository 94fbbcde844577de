// Package prompt builds the narrative and image generation prompts from the
// user's keywords, category, and image style.
package prompt

import (
	"fmt"

	"github.com/anikutusu/anikutusu"
)

// toneClauses steer the narrative voice per category. The map is total over
// the closed category set; Build falls back to the general clause for
// anything else.
var toneClauses = map[anikutusu.Category]string{
	anikutusu.CategoryGeneral:      "Sıcak, özlem dolu ve genel bir nostalji tonu kullan.",
	anikutusu.CategoryChildhood:    "Bir çocuğun gözünden, saf ve oyunbaz bir tonla anlat.",
	anikutusu.CategorySchool:       "Okul sıralarını, teneffüs zillerini ve sınıf arkadaşlıklarını hatırlatan bir tonla anlat.",
	anikutusu.CategoryHoliday:      "Bayram sabahlarının telaşını ve aile sofralarının sıcaklığını hissettiren bir tonla anlat.",
	anikutusu.CategoryNeighborhood: "Eski mahalle kültürünü, komşulukları ve sokak oyunlarını yaşatan bir tonla anlat.",
}

// sceneClauses describe the scene per category for the image prompt.
var sceneClauses = map[anikutusu.Category]string{
	anikutusu.CategoryGeneral:      "an everyday nostalgic moment from decades past,",
	anikutusu.CategoryChildhood:    "children playing in a sunlit street of the 1980s,",
	anikutusu.CategorySchool:       "an old classroom with wooden desks and a chalkboard,",
	anikutusu.CategoryHoliday:      "a festive family gathering around a holiday table,",
	anikutusu.CategoryNeighborhood: "a warm old neighborhood street with small shops and chatting neighbors,",
}

// renderClauses close the image prompt with the rendering style. The style
// clause always comes last.
var renderClauses = map[anikutusu.ImageStyle]string{
	anikutusu.StyleFadedPhoto: "rendered as a faded vintage photograph with soft warm tones.",
	anikutusu.StylePolaroid:   "rendered as an instant polaroid picture with a white frame and slight overexposure.",
	anikutusu.StyleFilmGrain:  "rendered as a still from an old film with heavy analog grain.",
	anikutusu.StyleWatercolor: "rendered as a delicate watercolor painting with muted colors.",
}

// Build returns the narrative prompt and the image prompt for the given
// inputs. It is pure and total: unrecognized categories or styles use the
// default variants rather than failing.
func Build(category anikutusu.Category, query string, style anikutusu.ImageStyle) (narrative, image string) {
	tone, ok := toneClauses[category]
	if !ok {
		tone = toneClauses[anikutusu.CategoryGeneral]
	}
	scene, ok := sceneClauses[category]
	if !ok {
		scene = sceneClauses[anikutusu.CategoryGeneral]
	}
	render, ok := renderClauses[style]
	if !ok {
		render = renderClauses[anikutusu.StyleFadedPhoto]
	}

	narrative = fmt.Sprintf(
		"Şu anahtar kelimelerden yola çıkarak kısa, duygusal bir anı yaz: %s. %s",
		query, tone,
	)
	image = fmt.Sprintf(
		"A nostalgic scene evoking %q: %s %s",
		query, scene, render,
	)
	return narrative, image
}
