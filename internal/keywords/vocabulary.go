package keywords

// domainVocabulary is the curated ophthalmology vocabulary scanned first:
// diseases, anatomy, procedures, diagnostics, and common abbreviations.
// Multi-word terms match as whole phrases only.
var domainVocabulary = []string{
	// Diseases and conditions
	"glaucoma", "cataract", "macular degeneration", "diabetic retinopathy",
	"retinal detachment", "keratoconus", "uveitis", "amblyopia", "strabismus",
	"dry eye disease", "macular edema", "retinopathy of prematurity",
	"ocular hypertension", "myopia", "hyperopia", "astigmatism", "presbyopia",
	"endophthalmitis", "keratitis", "conjunctivitis", "scleritis", "iritis",
	"choroiditis", "papilledema", "retinitis pigmentosa", "fuchs dystrophy",
	"pterygium", "ptosis", "nystagmus",

	// Anatomy
	"cornea", "retina", "macula", "fovea", "optic nerve", "optic disc",
	"anterior chamber", "vitreous", "choroid", "sclera", "limbus",
	"trabecular meshwork", "ciliary body", "crystalline lens", "conjunctiva",
	"eyelid", "lacrimal gland", "tear film",

	// Procedures
	"phacoemulsification", "trabeculectomy", "vitrectomy", "keratoplasty",
	"lasik", "smile", "photorefractive keratectomy", "capsulotomy",
	"dacryocystorhinostomy", "blepharoplasty", "cross-linking",
	"intravitreal injection", "laser photocoagulation", "goniotomy",
	"iridotomy", "scleral buckle",

	// Diagnostics and measurements
	"optical coherence tomography", "visual acuity", "intraocular pressure",
	"visual field", "fundus photography", "fluorescein angiography",
	"corneal topography", "pachymetry", "gonioscopy", "biometry",
	"electroretinography", "slit lamp",

	// Abbreviations and therapeutics
	"oct", "iop", "vegf", "anti-vegf", "iol", "migs", "rnfl", "cnv", "rop",
	"bcva", "dmek", "dsaek", "prk", "ranibizumab", "aflibercept",
	"bevacizumab", "faricimab",
}

// stopwords are excluded from fallback word and phrase extraction.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "that": {},
	"this": {}, "were": {}, "was": {}, "are": {}, "has": {}, "have": {},
	"had": {}, "been": {}, "than": {}, "into": {}, "after": {}, "before": {},
	"between": {}, "during": {}, "under": {}, "over": {}, "about": {},
	"among": {}, "these": {}, "those": {}, "their": {}, "there": {},
	"which": {}, "while": {}, "when": {}, "where": {}, "patients": {},
	"patient": {}, "study": {}, "studies": {}, "results": {}, "methods": {},
	"conclusion": {}, "conclusions": {}, "background": {}, "objective": {},
	"purpose": {}, "significantly": {}, "compared": {}, "respectively": {},
	"associated": {}, "analysis": {}, "clinical": {}, "outcomes": {},
	"treatment": {}, "following": {}, "included": {}, "however": {},
	"although": {}, "therefore": {}, "because": {}, "without": {},
	"through": {}, "showed": {}, "group": {}, "groups": {}, "months": {},
	"years": {}, "weeks": {},
}
