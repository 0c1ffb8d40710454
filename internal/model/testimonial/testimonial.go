package testimonial

// Testimonial is an immutable customer quote shown in the carousel.
// Name is the unique key.
type Testimonial struct {
	Name     string `json:"name" yaml:"name"`
	Text     string `json:"text" yaml:"text"`
	ImageURL string `json:"imageUrl" yaml:"imageUrl"`
	Rating   int    `json:"rating" yaml:"rating"`
}

// MaxRating is the highest star rating a testimonial can carry.
const MaxRating = 5

// Seed provides the default content pool rendered on the landing page.
func Seed() []Testimonial {
	return []Testimonial{
		{
			Name:     "Amelia Hart",
			Text:     "The team turned our cramped studio into a space clients remember. Booking was effortless.",
			ImageURL: "/images/testimonials/amelia.jpg",
			Rating:   5,
		},
		{
			Name:     "Daniel Okafor",
			Text:     "Clear communication from the first call to the final walkthrough. Worth every cent.",
			ImageURL: "/images/testimonials/daniel.jpg",
			Rating:   5,
		},
		{
			Name:     "Sofia Marquez",
			Text:     "They listened, sketched, and delivered exactly what we pictured, two days early.",
			ImageURL: "/images/testimonials/sofia.jpg",
			Rating:   5,
		},
		{
			Name:     "Liam Chen",
			Text:     "Great eye for light and materials. A couple of small delays but nothing that mattered.",
			ImageURL: "/images/testimonials/liam.jpg",
			Rating:   4,
		},
		{
			Name:     "Grace Whitfield",
			Text:     "Our restaurant bookings went up the month after the redesign. Guests keep asking who did it.",
			ImageURL: "/images/testimonials/grace.jpg",
			Rating:   5,
		},
		{
			Name:     "Noah Becker",
			Text:     "Friendly crew, tidy site, and an honest quote that did not grow halfway through.",
			ImageURL: "/images/testimonials/noah.jpg",
			Rating:   4,
		},
		{
			Name:     "Priya Raman",
			Text:     "The consultation alone gave us more ideas than three other studios combined.",
			ImageURL: "/images/testimonials/priya.jpg",
			Rating:   5,
		},
		{
			Name:     "Mateo Rossi",
			Text:     "Solid work on a tight budget. I would book them again for the next floor.",
			ImageURL: "/images/testimonials/mateo.jpg",
			Rating:   4,
		},
		{
			Name:     "Hannah Lindqvist",
			Text:     "Calm, organised and creative. The gallery wall they designed is the first thing people see.",
			ImageURL: "/images/testimonials/hannah.jpg",
			Rating:   5,
		},
		{
			Name:     "Omar Haddad",
			Text:     "From the booking form to the handover, everything felt considered.",
			ImageURL: "/images/testimonials/omar.jpg",
			Rating:   5,
		},
	}
}
