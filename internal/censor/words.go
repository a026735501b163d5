package censor

// DefaultTerms is the built-in banned-term list: profanity plus the
// contact-solicitation words that keep phone spam out of the channel.
var DefaultTerms = []string{
	"хуй", "пизда", "блять", "блядь", "ебать", "сука",
	"номер", "телефон", "звоните", "пишите", "контакт",
	"минет", "минетчик", "минетчица", "мокрощелка", "мокрощёлка",
	"манда", "мандавошка", "мандавошки", "мандей", "мандень", "мандеть",
	"мандища", "мандой", "манду", "мандюк", "мандюга",
	"мудоеб", "мудозвон", "мудоклюй",
	"наебать", "наебет", "наебнуть", "наебывать",
	"обосрать", "обосцать", "обосцаться", "обдристаться",
	"объебос", "обьебать", "обьебос",
	"отпиздить", "отпиздячить", "отпороть", "отъебись",
	"остоебенить", "остопиздеть",
	"охуеть", "охуенно", "охуевать", "охуевающий",
	"паскуда", "падла", "паскудник",
	"нахер", "нахрен", "нахуй", "нехера", "нехрен", "нехуй",
	"никуя", "нихуя", "нихера",
	"непизда", "нипизда", "нипизду", "напиздел", "напиздили",
	"наебнулся", "наебался",
	"пердеж", "пердение", "пердеть", "пердильник",
	"пердун", "пердунец", "пердунья", "пердуха", "пердульки",
	"перднуть", "пёрнуть", "пернуть", "пердят",
	"пиздят", "пиздить", "пиздишь", "пиздится",
	"заебал", "заебло",
	"пидар", "пидарас", "пидор", "пидорас", "пидик",
	"педрик", "педераст", "пидрас", "пидры", "пидрилы", "пидрило", "педрило",
	"блядина", "блядство", "блядствующие", "блядствует",
	"шалава", "шалавость", "шалавиться",
}
