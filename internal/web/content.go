package web

const (
	ProductName    = "MedSummary AI"
	acceptedUpload = "application/pdf"
	uploadAction   = "/upload"
)

type NavLink struct {
	Name string
	Href string
}

// Navbar is the site header. MenuOpen is the initial state of the mobile menu.
type Navbar struct {
	Brand    string
	Links    []NavLink
	CTA      string
	MenuOpen bool
}

// UploadCard is the hero upload control. Loading locks the file input.
type UploadCard struct {
	Action   string
	Accept   string
	DragOver bool
	Loading  bool
	Error    string
}

func (u UploadCard) Locked() bool {
	return u.Loading
}

type Feature struct {
	Icon        string
	Title       string
	Description string
	Color       string
}

type Step struct {
	ID          int
	Title       string
	Description string
	Icon        string
	Color       string
	Image       string
}

// Reversed alternates the step layout.
func (s Step) Reversed() bool {
	return s.ID%2 == 0
}

// FAQItem is an accordion entry. Open is its initial expanded state.
type FAQItem struct {
	Question string
	Answer   string
	Open     bool
}

type Tool struct {
	Icon        string
	Title       string
	Description string
}

type PromoCard struct {
	Title       string
	Description string
	CTA         string
}

type HomePage struct {
	Upload   UploadCard
	Features []Feature
	Steps    []Step
	FAQ      []FAQItem
	Tools    []Tool
	Promo    PromoCard
}

// Page is what the layout template receives.
type Page struct {
	Title string
	Nav   Navbar
	Body  any
}

func NewPage(title string, body any) Page {
	if title == "" {
		title = ProductName
	} else {
		title = title + " | " + ProductName
	}
	return Page{Title: title, Nav: DefaultNavbar(), Body: body}
}

func DefaultNavbar() Navbar {
	return Navbar{
		Brand: ProductName,
		Links: []NavLink{
			{Name: "Product", Href: "/#features"},
			{Name: "How it Works", Href: "/#how-it-works"},
			{Name: "Security", Href: "/#security"},
			{Name: "Pricing", Href: "/#pricing"},
		},
		CTA: "Get Started Free",
	}
}

// NewHomePage builds the landing page. uploadErr is shown inline under the
// upload card; the card is always rendered unlocked.
func NewHomePage(uploadErr string) HomePage {
	return HomePage{
		Upload: UploadCard{
			Action: uploadAction,
			Accept: acceptedUpload,
			Error:  uploadErr,
		},
		Features: []Feature{
			{
				Icon:        "activity",
				Title:       "Clinically Accurate Summaries",
				Description: "Extracts diagnoses, vitals, medications, and observations with high precision.",
				Color:       "bg-blue-500",
			},
			{
				Icon:        "file-json",
				Title:       "Doctor-Friendly Structured Output",
				Description: "Organizes data into History, Findings, Lab Results, and Impression sections.",
				Color:       "bg-purple-500",
			},
			{
				Icon:        "shield-check",
				Title:       "Enterprise-Grade Data Security",
				Description: "No reports stored permanently. Secure medical data handling.",
				Color:       "bg-green-500",
			},
		},
		Steps: []Step{
			{
				ID:          1,
				Title:       "Upload your medical report",
				Description: "Drag & drop or select your PDF file. We support lab reports, discharge summaries, and prescriptions.",
				Icon:        "upload",
				Color:       "bg-blue-50",
				Image:       "/static/img/step1.svg",
			},
			{
				ID:          2,
				Title:       "AI analyzes the document",
				Description: "Our secure AI scans the text to extract clinical facts, medications, and vital signs in real-time.",
				Icon:        "cpu",
				Color:       "bg-purple-50",
				Image:       "/static/img/step2.svg",
			},
			{
				ID:          3,
				Title:       "View & Export Summary",
				Description: "Get a structured dashboard with key findings. Export it as a clean PDF for your records.",
				Icon:        "download",
				Color:       "bg-green-50",
				Image:       "/static/img/step3.svg",
			},
		},
		FAQ: []FAQItem{
			{
				Question: "What types of medical reports are supported?",
				Answer:   "We support a wide range of medical documents including lab reports, discharge summaries, prescriptions, radiology reports, and clinical notes in PDF format.",
			},
			{
				Question: "Is patient data stored?",
				Answer:   "No. Files are processed in memory and discarded after summarization. We do not store any patient data permanently.",
			},
			{
				Question: "Can I summarize handwritten or scanned reports?",
				Answer:   "Scanned reports work when the PDF carries a text layer. Handwritten text recognition depends on legibility.",
			},
			{
				Question: "Is it free to use?",
				Answer:   "We offer a free tier for basic usage. For high-volume professional use, we have premium plans with advanced features and API access.",
			},
		},
		Tools: []Tool{
			{Icon: "microscope", Title: "Lab Report Summarizer", Description: "Analyze blood tests and diagnostic reports with reference ranges."},
			{Icon: "file-text", Title: "Discharge Summary Analyzer", Description: "Condense lengthy hospital discharge papers into key action items."},
			{Icon: "pill", Title: "Prescription Insight Tool", Description: "Understand medication interactions, strict dosages, and timings."},
			{Icon: "scan", Title: "Radiology Report Parser", Description: "Simplify complex MRI, CT, and X-ray reports for better understanding."},
			{Icon: "clipboard-plus", Title: "Clinical Notes Summarizer", Description: "Turn unstructured doctor notes into organized medical history."},
		},
		Promo: PromoCard{
			Title:       "All-in-One",
			Description: "Get access to all these tools with our Pro plan.",
			CTA:         "Explore Pro",
		},
	}
}
