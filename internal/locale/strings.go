package locale

// tables holds the verdict strings per language code
var tables = map[string]map[Key]string{
	"en": {
		KeyPrediction:         "Prediction",
		KeyRisk:               "You are at risk of diabetes.",
		KeyNoRisk:             "You are not at risk of diabetes. Great job maintaining your health!",
		KeyDocumentPrediction: "PDF Prediction",
		KeyRiskDetected:       "Risk of diabetes detected.",
		KeyNoRiskDetected:     "No risk of diabetes detected.",
		KeyFillOutAllFields:   "Please fill out all fields.",
	},
	"ta": {
		KeyPrediction:         "மதிப்பீடு",
		KeyRisk:               "நீங்கள் சர்க்கரை நோய்க்கு ஆபத்தாக உள்ளீர்கள்.",
		KeyNoRisk:             "நீங்கள் சர்க்கரை நோய்க்கு ஆபத்தாக இல்லீர்கள். உங்கள் உடல் நலத்தை சுட்டுங்கள்!",
		KeyDocumentPrediction: "PDF மதிப்பீடு",
		KeyRiskDetected:       "சர்க்கரை நோய்க்கு ஆபத்து கண்டறியப்பட்டது.",
		KeyNoRiskDetected:     "சர்க்கரை நோய்க்கு ஆபத்து இல்லை.",
		KeyFillOutAllFields:   "அனைத்து புலங்களையும் நிரப்பவும்.",
	},
	"hi": {
		KeyPrediction:         "भविष्यवाणी",
		KeyRisk:               "आपको मधुमेह का खतरा है।",
		KeyNoRisk:             "आपको मधुमेह का खतरा नहीं है। आपकी सेहत बनाए रखने के लिए अच्छा काम!",
		KeyDocumentPrediction: "पीडीएफ भविष्यवाणी",
		KeyRiskDetected:       "मधुमेह का खतरा पता चला।",
		KeyNoRiskDetected:     "मधुमेह का कोई खतरा नहीं पाया गया।",
		KeyFillOutAllFields:   "कृपया सभी फ़ील्ड भरें।",
	},
	"fr": {
		KeyPrediction:         "Prédiction",
		KeyRisk:               "Vous êtes à risque de diabète.",
		KeyNoRisk:             "Vous n’êtes pas à risque de diabète. Bon travail pour maintenir votre santé !",
		KeyDocumentPrediction: "Prédiction PDF",
		KeyRiskDetected:       "Risque de diabète détecté.",
		KeyNoRiskDetected:     "Aucun risque de diabète détecté.",
		KeyFillOutAllFields:   "Veuillez remplir tous les champs.",
	},
	"te": {
		KeyPrediction:         "అంచనా",
		KeyRisk:               "మీకు మధుమేహం రిస్క్ ఉంది.",
		KeyNoRisk:             "మీకు మధుమేహం రిస్క్ లేదు. మీ ఆరోగ్యాన్ని కాపాడుకోవడానికి మంచి పని!",
		KeyDocumentPrediction: "PDF అంచనా",
		KeyRiskDetected:       "మధుమేహం రిస్క్ గుర్తించబడింది.",
		KeyNoRiskDetected:     "మధుమేహం రిస్క్ లేదు.",
		KeyFillOutAllFields:   "అన్ని ఫీల్డులను నింపండి.",
	},
	"ml": {
		KeyPrediction:         "അഞ്ച്",
		KeyRisk:               "നിങ്ങൾക്ക് മധുമേഹത്തിന്റെ അപകടം ഉണ്ട്.",
		KeyNoRisk:             "നിങ്ങൾക്ക് മധുമേഹത്തിന്റെ അപകടം ഇല്ല. നിങ്ങളുടെ ആരോഗ്യത്തെ സൂക്ഷിക്കാൻ നല്ല ജോലി!",
		KeyDocumentPrediction: "പിഡിഎഫ് പ്രവചനം",
		KeyRiskDetected:       "മധുമേഹത്തിന്റെ അപകടം കണ്ടെത്തി.",
		KeyNoRiskDetected:     "മധുമേഹത്തിന്റെ അപകടം കണ്ടെത്തിയില്ല.",
		KeyFillOutAllFields:   "എല്ലാ ഫീൽഡുകളും നിറയുക.",
	},
	"de": {
		KeyPrediction:         "Vorhersage",
		KeyRisk:               "Sie sind gefährdet, Diabetes zu bekommen.",
		KeyNoRisk:             "Sie sind nicht gefährdet, Diabetes zu bekommen. Gute Arbeit bei der Erhaltung Ihrer Gesundheit!",
		KeyDocumentPrediction: "PDF-Vorhersage",
		KeyRiskDetected:       "Risikofaktor Diabetes erkannt.",
		KeyNoRiskDetected:     "Kein Risiko für Diabetes erkannt.",
		KeyFillOutAllFields:   "Bitte alle Felder ausfüllen.",
	},
	"zh": {
		KeyPrediction:         "预测",
		KeyRisk:               "您有糖尿病风险。",
		KeyNoRisk:             "您没有糖尿病风险。保持健康做得很好！",
		KeyDocumentPrediction: "PDF预测",
		KeyRiskDetected:       "检测到糖尿病风险。",
		KeyNoRiskDetected:     "未检测到糖尿病风险。",
		KeyFillOutAllFields:   "请填写所有字段。",
	},
}
