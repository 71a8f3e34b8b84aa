// Package rubric defines the fixed TOEFL speaking rubrics used to grade
// student responses. The texts are the published scoring criteria and must
// not be edited casually.
package rubric

import (
	"sort"
	"strconv"
	"strings"

	"github.com/esltool/speakgrader/internal/model"
)

// LanguageUse returns the language-use rubric. It applies to every task.
func LanguageUse() model.Rubric {
	return model.Rubric{
		Name: "Language Use",
		Levels: map[float64]string{
			4.0: "The response demonstrates effective use of grammar and vocabulary. It exhibits a fairly high degree of automaticity with good control of basic and complex structures (as appropriate). Some minor (or systematic) errors are noticeable but do not obscure meaning.",
			3.0: "The response demonstrates fairly automatic and effective use of grammar and vocabulary, and fairly coherent expression of relevant ideas. Response may exhibit some imprecise or inaccurate use of vocabulary or grammatical structures or be somewhat limited in the range of structures used. This may affect overall fluency, but it does not seriously interfere with the communication of the message.",
			2.0: "The response demonstrates limited range and control of grammar and vocabulary. These limitations often prevent full expression of ideas. For the most part, only basic sentence structures are used successfully and spoken with fluidity. Structures and vocabulary may express mainly simple (short) and/or general propositions, with simple or unclear connections made among them (serial listing, conjunction, juxtaposition).",
			1.0: "Range and control of grammar and vocabulary severely limit or prevent expression of ideas and connections among ideas. Some low-level responses may rely heavily on practiced or formulaic expressions.",
			0.0: "Speaker makes no attempt to respond OR response is unrelated to the topic.",
		},
	}
}

// TopicDevelopment returns the topic-development rubric for the given task
// number: the independent variant for task 1, the integrated variant for
// tasks 2-4. The dispatch is fixed by task number, never by content.
func TopicDevelopment(taskNumber int) model.Rubric {
	if taskNumber == 1 {
		return model.Rubric{
			Name: "Topic Development",
			Levels: map[float64]string{
				4.0: "Response is sustained and sufficient to the task. It is generally well developed and coherent; relationships between ideas are clear (or there is a clear progression of ideas).",
				3.0: "Response is mostly coherent and sustained and conveys relevant ideas/information. Overall development is somewhat limited, usually lacks elaboration or specificity. Relationships between ideas may at times not be immediately clear.",
				2.0: "The response is connected to the task, though the number of ideas presented or the development of ideas is limited. Mostly basic ideas are expressed with limited elaboration (details and support). At times relevant substance may be vaguely expressed or repetitious. Connections of ideas may be unclear.",
				1.0: "Limited relevant content is expressed. The response generally lacks substance beyond expression of very basic ideas. Speaker may be unable to sustain speech to complete the task and may rely heavily on repetition of the prompt.",
				0.0: "Speaker makes no attempt to respond OR response is unrelated to the topic.",
			},
		}
	}
	return model.Rubric{
		Name: "Topic Development",
		Levels: map[float64]string{
			4.0: "The response presents a clear progression of ideas and conveys the relevant information required by the task. It includes appropriate detail, though it may have minor errors or minor omissions.",
			3.0: "The response is sustained and conveys relevant information required by the task. However, it exhibits some incompleteness, inaccuracy, lack of specificity with respect to content, or choppiness in the progression of ideas.",
			2.0: "The response conveys some relevant information but is clearly incomplete or inaccurate. It is incomplete if it omits key ideas, makes vague reference to key ideas, or demonstrates limited development of important information. An inaccurate response demonstrates misunderstanding of key ideas from the stimulus. Typically, ideas expressed may not be well-connected or cohesive so that familiarity with the stimulus is necessary to follow what is being discussed.",
			1.0: "The response fails to provide much relevant content. Ideas that are expressed are often inaccurate, limited to vague utterances, or repetitions (including repetition of prompt).",
			0.0: "Speaker makes no attempt to respond OR response is unrelated to the topic.",
		},
	}
}

// Render formats a rubric as a score-to-description list, highest level
// first, the way it is embedded into evaluation prompts.
func Render(r model.Rubric) string {
	scores := make([]float64, 0, len(r.Levels))
	for s := range r.Levels {
		scores = append(scores, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(scores)))

	var sb strings.Builder
	for i, s := range scores {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strconv.FormatFloat(s, 'f', 1, 64))
		sb.WriteString(": ")
		sb.WriteString(r.Levels[s])
	}
	return sb.String()
}
