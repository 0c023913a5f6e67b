package content

import "time"

type Helpline struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	Hours  string `json:"hours"`
}

// Helplines are shown on the crisis screen.
var Helplines = []Helpline{
	{Name: "Jeevan Aastha helpline (GJ)", Number: "1800-233-3330", Hours: "24x7"},
	{Name: "Aasra", Number: "09820466726", Hours: "24x7"},
	{Name: "Vandravela foundation", Number: "+91 9999666555", Hours: "24x7"},
	{Name: "Kiran mental health (govt)", Number: "1800-599-0019", Hours: "24x7"},
	{Name: "One life foundation", Number: "7893078930", Hours: "24x7"},
	{Name: "Sumaitri", Number: "011-46018404", Hours: "2pm-10pm"},
	{Name: "Fortis stress helpline", Number: "+91-8376804102", Hours: "24x7"},
	{Name: "I-CALL Psychosocial helpline (Tiss)", Number: "022-25521111", Hours: "10am - 8pm"},
	{Name: "Interventional bipolar foundation", Number: "+91-8888817666", Hours: "7am - 9pm"},
	{Name: "National institute of behavioural sciences Kolkata", Number: "033-22865203", Hours: "12pm - 8pm"},
	{Name: "CAN- Helper", Number: "09511948920", Hours: "10am - 6pm"},
	{Name: "Mann talks helpline (MH)", Number: "8686139139", Hours: "9am - 6pm"},
	{Name: "The institute of mental health(IMH)", Number: "9154154092 / 044-26425585", Hours: "24x7"},
	{Name: "NIMHANS centre for well-being", Number: "08026685948 / 9480829670", Hours: "Mon-Sat, 9am-4:30pm"},
}

// CrisisNotice opens the crisis screen.
const CrisisNotice = "If you are in immediate danger, please call your local emergency number. For other urgent situations, please contact one of the resources below."

var Affirmations = []string{
	"You are doing the best you can, and that is enough.",
	"You don't have to have it all figured out right now.",
	"You are allowed to rest. Rest is productive.",
	"You are stronger than the thoughts trying to bring you down.",
	"You have overcome so much already. You can face this too.",
	"You deserve peace, even on the busiest days.",
	"You are not behind. You are exactly where you need to be.",
	"You can breathe through this moment. Just one breath at a time.",
	"You are safe right now. Let your body soften.",
	"You are worthy of love and care, even from yourself.",
	"You don't need to carry it all alone. It's okay to ask for help.",
	"You are more than your worries. You are whole.",
	"You have permission to pause. Everything can wait.",
	"You are not a burden for feeling this way.",
	"You are allowed to feel all your emotions without judgment.",
	"You are capable of creating calm within the chaos.",
	"You matter, even on the days you feel invisible.",
	"You are growing through what you're going through.",
	"You have handled difficult things before. You will again.",
	"You are enough, just as you are.",
}

// AffirmationInterval is how long each affirmation stays on the home screen.
const AffirmationInterval = 5 * time.Second

// AffirmationAt returns the affirmation on display at t.
func AffirmationAt(t time.Time) string {
	n := t.UnixNano() / int64(AffirmationInterval)
	return Affirmations[int(n%int64(len(Affirmations)))]
}

type Card struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
}

// LearnCards answer common questions about mental health.
var LearnCards = []Card{
	{
		Question: "What is anxiety, stress, and depression?",
		Answer:   "Anxiety is when your mind keeps worrying, even when nothing is wrong. Stress happens when you're under pressure and feel like things are too much. Depression is a lasting sadness that doesn't go away easily and affects how you live.",
	},
	{
		Question: "How to identify triggers?",
		Answer:   "Triggers are moments or thoughts that suddenly shift your mood. Notice what was happening before you felt anxious or sad. Writing it down helps you see patterns and learn how to handle them better.",
	},
	{
		Question: "What is therapy really like?",
		Answer:   "Therapy is a safe, private space to talk with a trained professional. It's not about being \"broken,\" but about learning tools to cope, express yourself, and feel lighter. Every session is based on trust and healing at your pace.",
	},
	{
		Question: "How to support a friend who's struggling?",
		Answer:   "Be there without judgment. Listen more than you speak, and offer reassurance like, \"I care about you.\" Avoid trying to \"fix\" them. Encourage them to talk to a professional and check in regularly so they don't feel alone.",
	},
	{
		Question: "Why track emotions?",
		Answer:   "Tracking your emotions helps you become more aware of what you're feeling and why. It shows you patterns over time, like what uplifts you and what drains you. This helps in managing emotions instead of feeling controlled by them.",
	},
	{
		Question: "How to build healthy boundaries?",
		Answer:   "Boundaries are limits that protect your mental health. It's okay to say no or take time for yourself. Healthy boundaries don't push people away, they help build stronger, more respectful relationships.",
	},
	{
		Question: "What are panic attacks?",
		Answer:   "Panic attacks are sudden waves of intense fear with physical symptoms like a rapid heartbeat. They can feel terrifying but are not dangerous. Grounding exercises and deep breathing can help you stay calm.",
	},
	{
		Question: "Difference between a psychologist, therapist, and psychiatrist?",
		Answer:   "A therapist helps you cope via talk sessions. A psychologist also does therapy and may conduct tests. A psychiatrist is a medical doctor who can prescribe medication if needed. All are here to support you.",
	},
	{
		Question: "Understanding your inner critic and self-compassion?",
		Answer:   "The inner critic is the voice that says you're not good enough. Self-compassion is learning to talk to yourself with kindness instead. Notice when you're being harsh and try saying something gentle, like you would to a friend.",
	},
}

type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Screen      string `json:"screen"`
}

var Features = []Feature{
	{Title: "Breathe & Ease", Description: "Immediate tools for distress.", Screen: "breathe-ease"},
	{Title: "Mood Check", Description: "Check in with your feelings.", Screen: "mood-check"},
	{Title: "Heart Journal", Description: "Reflect on your thoughts.", Screen: "heart-journal"},
	{Title: "AI Friend", Description: "Chat for encouragement.", Screen: "chatbot"},
}
