package catalog

import "github.com/oculit/ophtha-fetcher/internal/domain"

// subspecialtyPacks maps a subspecialty tag to its ordered boost keywords.
// Presence of a boost keyword in a title or abstract raises the relevance
// score; it never narrows a query on its own.
var subspecialtyPacks = map[string][]string{
	domain.SubspecialtyCataract: {
		"cataract", "phacoemulsification", "intraocular lens", "IOL",
		"capsulotomy", "posterior capsule opacification", "pseudophakia",
	},
	domain.SubspecialtyRefractive: {
		"LASIK", "SMILE", "photorefractive keratectomy", "refractive surgery",
		"myopia", "astigmatism", "corneal topography", "keratoconus",
	},
	domain.SubspecialtyGlaucoma: {
		"glaucoma", "intraocular pressure", "trabeculectomy", "ocular hypertension",
		"optic nerve", "visual field", "MIGS", "gonioscopy",
	},
	domain.SubspecialtyRetina: {
		"retina", "macular degeneration", "diabetic retinopathy", "retinal detachment",
		"anti-VEGF", "vitrectomy", "macular edema", "optical coherence tomography",
	},
	domain.SubspecialtyOculoplasty: {
		"eyelid", "ptosis", "blepharoplasty", "orbital", "lacrimal",
		"dacryocystorhinostomy", "entropion", "ectropion",
	},
	domain.SubspecialtyUveitis: {
		"uveitis", "iritis", "choroiditis", "ocular inflammation",
		"scleritis", "vitritis", "panuveitis",
	},
	domain.SubspecialtyPediatrics: {
		"pediatric ophthalmology", "strabismus", "amblyopia",
		"retinopathy of prematurity", "congenital cataract", "esotropia",
	},
}

// genericBoosts is the fallback boost list when no subspecialty is chosen.
var genericBoosts = []string{
	"ophthalmology", "retina", "glaucoma", "cornea", "cataract",
	"macular", "intraocular", "visual acuity", "ocular",
}

// BoostKeywords returns the boost keyword list for a subspecialty tag.
// Unknown tags and "all" fall back to the generic ophthalmology list.
func BoostKeywords(subspecialty string) []string {
	if pack, ok := subspecialtyPacks[subspecialty]; ok {
		return pack
	}
	return genericBoosts
}

// Subspecialties returns the known subspecialty tags.
func Subspecialties() []string {
	return []string{
		domain.SubspecialtyCataract,
		domain.SubspecialtyRefractive,
		domain.SubspecialtyGlaucoma,
		domain.SubspecialtyRetina,
		domain.SubspecialtyOculoplasty,
		domain.SubspecialtyUveitis,
		domain.SubspecialtyPediatrics,
	}
}
